package accounts

import (
	"slices"

	"github.com/fastprodman/txledger/internal/models"
	"github.com/fastprodman/txledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct {
	byClient map[models.ClientID]*models.Account
}

func New() *accountsRepo {
	return &accountsRepo{byClient: make(map[models.ClientID]*models.Account)}
}

func (r *accountsRepo) GetOrCreate(client models.ClientID) *models.Account {
	acc, ok := r.byClient[client]
	if !ok {
		created := models.NewAccount(client)
		acc = &created
		r.byClient[client] = acc
	}

	return acc
}

func (r *accountsRepo) Get(client models.ClientID) (models.Account, bool) {
	acc, ok := r.byClient[client]
	if !ok {
		return models.Account{}, false
	}

	return *acc, true
}

func (r *accountsRepo) All() []models.Account {
	out := make([]models.Account, 0, len(r.byClient))
	for _, acc := range r.byClient {
		out = append(out, *acc)
	}

	slices.SortFunc(out, func(a, b models.Account) int {
		return int(a.Client) - int(b.Client)
	})

	return out
}
