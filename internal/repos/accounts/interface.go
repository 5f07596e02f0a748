package accounts

import "github.com/fastprodman/txledger/internal/models"

type Accounts interface {
	// GetOrCreate never fails; a zero, unlocked account is created on first access.
	GetOrCreate(client models.ClientID) *models.Account
	Get(client models.ClientID) (models.Account, bool)
	// All returns copies of every account ordered by client id.
	All() []models.Account
}
