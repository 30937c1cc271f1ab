package sidebar

import "context"

// brokerKey is the context key a Broker is published under.
type brokerKey struct{}

// ConfigurationError reports that the sidebar accessor was used somewhere
// no Broker was provided. It indicates a wiring mistake, not a runtime
// condition to recover from.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "sidebar: " + e.Msg
}

// Provide returns a copy of ctx that carries b. Lookups through the returned
// context and any context derived from it find b, unless a nearer Provide
// shadows it.
func Provide(ctx context.Context, b *Broker) context.Context {
	return context.WithValue(ctx, brokerKey{}, b)
}

// Use returns the nearest Broker provided to ctx. The same instance is
// returned to every caller, so mutations are visible to all of them.
func Use(ctx context.Context) (*Broker, error) {
	if b, ok := ctx.Value(brokerKey{}).(*Broker); ok && b != nil {
		return b, nil
	}
	return nil, &ConfigurationError{Msg: "accessor used without an enclosing broker"}
}

// MustUse is like Use but panics with a *ConfigurationError.
func MustUse(ctx context.Context) *Broker {
	b, err := Use(ctx)
	if err != nil {
		panic(err)
	}
	return b
}
