package service

import (
	"context"
	"fmt"
	"sync"

	"stark_bridge/internal/models"
)

type memKey struct {
	wallet string
	index  int64
}

// Memory держит учётки в процессе. Мерж одного ключа идёт под его собственным мьютексом.
type Memory struct {
	mu    sync.RWMutex
	data  map[memKey]*models.AccountCredential
	locks map[memKey]*sync.Mutex
}

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[memKey]*models.AccountCredential),
		locks: make(map[memKey]*sync.Mutex),
	}
}

func (m *Memory) lockFor(k memKey) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[k]
	if !ok {
		l = &sync.Mutex{}
		m.locks[k] = l
	}
	return l
}

func (m *Memory) Upsert(_ context.Context, wallet string, index int64, patch models.CredentialPatch) (*models.AccountCredential, error) {
	w, err := Key(wallet, index)
	if err != nil {
		return nil, err
	}
	k := memKey{wallet: w, index: index}

	l := m.lockFor(k)
	l.Lock()
	defer l.Unlock()

	m.mu.RLock()
	cur := m.data[k]
	m.mu.RUnlock()

	next := cur.Clone()
	if next == nil {
		next = &models.AccountCredential{WalletAddress: w, AccountIndex: index}
	}
	patch.Apply(next)

	m.mu.Lock()
	m.data[k] = next
	m.mu.Unlock()

	return next.Clone(), nil
}

func (m *Memory) Get(_ context.Context, wallet string, index int64) (*models.AccountCredential, error) {
	w, err := Key(wallet, index)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	rec, ok := m.data[memKey{wallet: w, index: index}]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s/%d", models.ErrCredentialNotFound, w, index)
	}
	return rec.Clone(), nil
}
