// Package testutil provides shared fixture types and a pre-populated
// descriptor registry for tests across the module.
package testutil

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	typetostring "github.com/samber/go-type-to-string"

	"github.com/junioryono/bindery/internal/typeinfo"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrIntentional = errors.New("intentional error")
	ErrConstructor = errors.New("constructor error")
)

// Canonical ids for fixture types, matching what the invoker derives by
// reflection.
var (
	StampID      = typetostring.GetType[*Stamp]()
	DatabaseID   = typetostring.GetType[*Database]()
	RepositoryID = typetostring.GetType[*Repository]()
	GreeterID    = typetostring.GetType[*Greeter]()
	LoggerID     = typetostring.GetType[Logger]()
	CycleAID     = typetostring.GetType[*CycleA]()
	CycleBID     = typetostring.GetType[*CycleB]()

	AbstractJobID = "testutil.AbstractJob"
)

// Stamp is a service whose instances are individually identifiable.
type Stamp struct {
	ID        string
	CreatedAt time.Time
}

func NewStamp() *Stamp {
	return &Stamp{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Logger is a fixture interface.
type Logger interface {
	Log(msg string)
}

// MemoryLogger implements Logger and records messages.
type MemoryLogger struct {
	mu    sync.Mutex
	Lines []string
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, msg)
}

func (l *MemoryLogger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Lines)
}

// Database has a single scalar constructor parameter.
type Database struct {
	DSN string
}

func NewDatabase(dsn string) *Database {
	return &Database{DSN: dsn}
}

// Repository depends on Database through its constructor.
type Repository struct {
	DB *Database
}

func NewRepository(db *Database) *Repository {
	return &Repository{DB: db}
}

// Greeter carries methods for invoker tests.
type Greeter struct {
	Prefix string
}

func NewGreeter() *Greeter {
	return &Greeter{Prefix: "Hello"}
}

func (g *Greeter) Greet(name string) string {
	return fmt.Sprintf("%s, %s!", g.Prefix, name)
}

func (g *Greeter) Fail() (string, error) {
	return "", ErrIntentional
}

func (g *Greeter) Explode() string {
	panic("boom")
}

// CycleA and CycleB depend on each other, forming a constructor cycle.
type CycleA struct{ B *CycleB }

type CycleB struct{ A *CycleA }

// Registry returns a descriptor registry populated with all fixture
// types.
func Registry() *typeinfo.Registry {
	reg := typeinfo.NewRegistry()

	mustAdd := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	mustAdd(reg.AddConstructor(StampID, NewStamp))
	mustAdd(reg.AddConstructor(DatabaseID, NewDatabase, "dsn"))
	mustAdd(reg.AddConstructor(RepositoryID, NewRepository, "db"))

	mustAdd(reg.Add(&typeinfo.Descriptor{
		ID:   LoggerID,
		Kind: typeinfo.Interface,
	}))
	mustAdd(reg.Add(&typeinfo.Descriptor{
		ID:   AbstractJobID,
		Kind: typeinfo.Abstract,
	}))

	mustAdd(reg.Add(&typeinfo.Descriptor{
		ID:   GreeterID,
		Kind: typeinfo.Concrete,
		New: func(args []any) (any, error) {
			return NewGreeter(), nil
		},
		Methods: map[string][]typeinfo.Param{
			"Greet": {
				{Name: "name", Type: "string", Builtin: true},
			},
		},
	}))

	mustAdd(reg.Add(&typeinfo.Descriptor{
		ID:   CycleAID,
		Kind: typeinfo.Concrete,
		Params: []typeinfo.Param{
			{Name: "b", Type: CycleBID},
		},
		New: func(args []any) (any, error) {
			return &CycleA{B: args[0].(*CycleB)}, nil
		},
	}))
	mustAdd(reg.Add(&typeinfo.Descriptor{
		ID:   CycleBID,
		Kind: typeinfo.Concrete,
		Params: []typeinfo.Param{
			{Name: "a", Type: CycleAID},
		},
		New: func(args []any) (any, error) {
			return &CycleB{A: args[0].(*CycleA)}, nil
		},
	}))

	return reg
}
