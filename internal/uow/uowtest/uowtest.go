// Package uowtest provides an in-memory unit of work for service tests.
package uowtest

import (
	"context"

	"bakery-be/internal/uow"
)

type TX struct {
	Repos map[uow.RepositoryName]uow.Repository
}

func (t *TX) Get(name uow.RepositoryName) (uow.Repository, error) {
	if r, ok := t.Repos[name]; ok {
		return r, nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}

// UOW hands the same repositories to transactional and non-transactional
// callers and counts how transactions ended.
type UOW struct {
	TX         *TX
	Committed  int
	RolledBack int
}

func New(repos map[uow.RepositoryName]uow.Repository) *UOW {
	return &UOW{TX: &TX{Repos: repos}}
}

func (u *UOW) Register(name uow.RepositoryName, factory uow.RepositoryFactory) error {
	if _, ok := u.TX.Repos[name]; ok {
		return uow.ErrRepositoryAlreadyRegistered
	}
	u.TX.Repos[name] = factory(nil)
	return nil
}

func (u *UOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	if err := fn(ctx, u.TX); err != nil {
		u.RolledBack++
		return err
	}
	u.Committed++
	return nil
}

func (u *UOW) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	return u.TX.Get(name)
}
