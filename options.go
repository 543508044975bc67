package bindery

// Option configures a container at construction time.
type Option func(*Container)

// WithIntrospector replaces the default typeinfo registry with a custom
// type-descriptor source. A nil introspector is ignored.
func WithIntrospector(types TypeIntrospector) Option {
	return func(c *Container) {
		if types != nil {
			c.types = types
		}
	}
}
