package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"neksa/internal/model"
	"neksa/internal/repo"
)

type fakeStore struct {
	mu     sync.Mutex
	regs   map[int64]*model.Registration
	setErr error
	getErr error
}

func newFakeStore(regs ...model.Registration) *fakeStore {
	m := make(map[int64]*model.Registration, len(regs))
	for i := range regs {
		r := regs[i]
		m[r.ID] = &r
	}
	return &fakeStore{regs: m}
}

func (f *fakeStore) ConditionalSetAttended(_ context.Context, id, eventID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return 0, f.setErr
	}
	r, ok := f.regs[id]
	if !ok || r.EventID != eventID || r.Status != model.StatusPending {
		return 0, nil
	}
	r.Status = model.StatusAttended
	return 1, nil
}

func (f *fakeStore) GetRegistrationByID(_ context.Context, id int64) (*model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.regs[id]
	if !ok {
		return nil, repo.ErrRegistrationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) status(id int64) model.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[id].Status
}

func newMachine(store Store) *Machine {
	log := zerolog.Nop()
	return NewMachine(store, &log)
}

func TestMachine_Scan(t *testing.T) {
	t.Parallel()

	pending := model.Registration{ID: 42, EventID: 1, FullName: "Ada Lovelace", Status: model.StatusPending}

	t.Run("accepts a valid pending ticket", func(t *testing.T) {
		store := newFakeStore(pending)
		m := newMachine(store)

		out, err := m.Scan(context.Background(), "42", 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Code != Accepted {
			t.Fatalf("expected %s, got %s", Accepted, out.Code)
		}
		if out.Registration == nil || out.Registration.Status != model.StatusAttended {
			t.Fatalf("expected attended registration in outcome, got %+v", out.Registration)
		}
		if store.status(42) != model.StatusAttended {
			t.Fatalf("expected stored status attended, got %s", store.status(42))
		}
	})

	t.Run("second scan of the same ticket reports already checked in", func(t *testing.T) {
		store := newFakeStore(pending)
		m := newMachine(store)

		first, err := m.Scan(context.Background(), "42", 1)
		if err != nil {
			t.Fatalf("first scan: %v", err)
		}
		if first.Code != Accepted {
			t.Fatalf("first scan: expected %s, got %s", Accepted, first.Code)
		}

		second, err := m.Scan(context.Background(), "42", 1)
		if err != nil {
			t.Fatalf("second scan: %v", err)
		}
		if second.Code != AlreadyCheckedIn {
			t.Fatalf("second scan: expected %s, got %s", AlreadyCheckedIn, second.Code)
		}
		if second.Registration == nil || second.Registration.ID != 42 {
			t.Fatalf("expected registration attached to duplicate scan outcome")
		}
		if store.status(42) != model.StatusAttended {
			t.Fatalf("expected stored status to stay attended")
		}
	})

	t.Run("ticket for another event is rejected without mutation", func(t *testing.T) {
		store := newFakeStore(pending)
		m := newMachine(store)

		out, err := m.Scan(context.Background(), "42", 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Code != WrongEvent {
			t.Fatalf("expected %s, got %s", WrongEvent, out.Code)
		}
		if store.status(42) != model.StatusPending {
			t.Fatalf("wrong-event scan must not mutate the record, got %s", store.status(42))
		}
	})

	t.Run("unknown ticket", func(t *testing.T) {
		m := newMachine(newFakeStore())

		out, err := m.Scan(context.Background(), "999", 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Code != UnknownTicket {
			t.Fatalf("expected %s, got %s", UnknownTicket, out.Code)
		}
	})

	t.Run("malformed payloads never touch the store", func(t *testing.T) {
		store := newFakeStore(pending)
		store.setErr = errors.New("store must not be called")
		m := newMachine(store)

		for _, payload := range []string{"", "abc", "-5", "12x", "0"} {
			out, err := m.Scan(context.Background(), payload, 1)
			if err != nil {
				t.Fatalf("payload %q: expected no error, got %v", payload, err)
			}
			if out.Code != MalformedPayload {
				t.Fatalf("payload %q: expected %s, got %s", payload, MalformedPayload, out.Code)
			}
		}
	})

	t.Run("store failure surfaces as an error, not a rejection", func(t *testing.T) {
		store := newFakeStore(pending)
		store.setErr = errors.New("connection reset")
		m := newMachine(store)

		_, err := m.Scan(context.Background(), "42", 1)
		if err == nil {
			t.Fatalf("expected error from store failure")
		}
	})
}

func TestMachine_ConcurrentScans(t *testing.T) {
	t.Parallel()

	store := newFakeStore(model.Registration{ID: 7, EventID: 3, FullName: "Grace Hopper", Status: model.StatusPending})
	m := newMachine(store)

	const scanners = 16
	outcomes := make(chan Code, scanners)

	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := m.Scan(context.Background(), "7", 3)
			if err != nil {
				t.Errorf("scan failed: %v", err)
				return
			}
			outcomes <- out.Code
		}()
	}
	wg.Wait()
	close(outcomes)

	accepted, duplicates := 0, 0
	for code := range outcomes {
		switch code {
		case Accepted:
			accepted++
		case AlreadyCheckedIn:
			duplicates++
		default:
			t.Fatalf("unexpected outcome %s", code)
		}
	}

	if accepted != 1 {
		t.Fatalf("expected exactly one accepted scan, got %d", accepted)
	}
	if duplicates != scanners-1 {
		t.Fatalf("expected %d duplicate outcomes, got %d", scanners-1, duplicates)
	}
	if store.status(7) != model.StatusAttended {
		t.Fatalf("expected final stored status attended")
	}
}
