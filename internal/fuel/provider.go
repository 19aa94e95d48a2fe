package fuel

import "context"

// Source loads the price history documents.
type Source interface {
	Name() string
	Load(ctx context.Context) (History, error)
}

// Store is the contract the in-memory session store must satisfy.
type Store interface {
	SaveSession(session Session) Session
	RecordFailure(err error)
	Current() (Session, error)
	LastError() error
}
