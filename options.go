package searchresult

// Option represents a result mapping configuration option.
type Option interface {
	Apply(*Config)
}

// Config holds all result mapping configuration parameters.
type Config struct {
	// Path locates the hits: every segment but the last leads to the hits
	// container, the last names the source field inside each hit.
	Path []string

	// IDField is the hit field holding the document identifier.
	IDField string

	// MetadataIDKey is the key under which the identifier is added to the source.
	MetadataIDKey string

	// ExplanationKey is the hit field holding the scoring explanation.
	ExplanationKey string

	// HighlightKey is the hit field holding highlighted fragments.
	HighlightKey string

	// Facets resolves facet discriminators to constructors.
	Facets *FacetRegistry

	// ResponseCode is the HTTP status the response was received with, 0 if unknown.
	ResponseCode int
}

const (
	// DefaultIDField is the identifier field of an Elasticsearch hit.
	DefaultIDField = "_id"
	// DefaultMetadataIDKey is the source key the hit identifier is injected under.
	DefaultMetadataIDKey = "es_metadata_id"
	// DefaultExplanationKey is the explanation field of an Elasticsearch hit.
	DefaultExplanationKey = "_explanation"
	// DefaultHighlightKey is the highlight field of an Elasticsearch hit.
	DefaultHighlightKey = "highlight"
)

// DefaultPath returns the hits path of a search response: hits/hits/_source.
func DefaultPath() []string {
	return []string{"hits", "hits", "_source"}
}

func defaultConfig() Config {
	return Config{
		Path:           DefaultPath(),
		IDField:        DefaultIDField,
		MetadataIDKey:  DefaultMetadataIDKey,
		ExplanationKey: DefaultExplanationKey,
		HighlightKey:   DefaultHighlightKey,
		Facets:         DefaultFacetRegistry,
	}
}

// optionFunc is a function that implements Option.
type optionFunc func(*Config)

// Apply implements the Option interface for optionFunc.
func (f optionFunc) Apply(cfg *Config) {
	f(cfg)
}

// WithPath sets the hits path, for responses that keep their hits somewhere
// else than hits/hits/_source (multi-get uses docs/_source, for example).
func WithPath(segments ...string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.Path = append([]string(nil), segments...)
	})
}

// WithIDField sets the hit field read as the document identifier.
func WithIDField(name string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.IDField = name
	})
}

// WithMetadataIDKey sets the source key the identifier is injected under.
func WithMetadataIDKey(name string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.MetadataIDKey = name
	})
}

// WithExplanationKey sets the hit field read as the explanation.
func WithExplanationKey(name string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.ExplanationKey = name
	})
}

// WithHighlightKey sets the hit field read as the highlight.
func WithHighlightKey(name string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.HighlightKey = name
	})
}

// WithFacetRegistry sets the registry used to construct facets.
func WithFacetRegistry(reg *FacetRegistry) Option {
	return optionFunc(func(cfg *Config) {
		cfg.Facets = reg
	})
}

// WithResponseCode records the HTTP status code of the response.
func WithResponseCode(code int) Option {
	return optionFunc(func(cfg *Config) {
		cfg.ResponseCode = code
	})
}

func (cfg Config) validate() error {
	if len(cfg.Path) < 2 {
		return withDetail(ErrInvalidOption, "hits path needs at least two segments, got %d", len(cfg.Path))
	}
	for i, seg := range cfg.Path {
		if seg == "" {
			return withDetail(ErrInvalidOption, "hits path segment %d is empty", i)
		}
	}
	if cfg.IDField == "" || cfg.MetadataIDKey == "" {
		return withDetail(ErrInvalidOption, "id field and metadata id key must be non-empty")
	}
	if cfg.Facets == nil {
		return withDetail(ErrInvalidOption, "facet registry must not be nil")
	}
	return nil
}
