package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix is stripped from environment variables before they are mapped
	// onto config keys, e.g. SHOP_DATABASE_URL sets database.url.
	EnvPrefix = "SHOP_"

	// PathEnv names an explicit config file.
	PathEnv = "SHOP_CONFIG"

	defaultPath = "config.yaml"
)

type Config struct {
	Env struct {
		Name        string `koanf:"name"`
		ServiceName string `koanf:"serviceName"`
		Log         Log    `koanf:"log"`
	} `koanf:"env"`

	HTTP struct {
		Port         int      `koanf:"port" validate:"min=1,max=65535"`
		MaxBodyBytes int64    `koanf:"maxBodyBytes" validate:"min=1"`
		CORSOrigins  []string `koanf:"corsOrigins"`
		Timeouts     struct {
			Read       time.Duration `koanf:"read"`
			ReadHeader time.Duration `koanf:"readHeader"`
			Write      time.Duration `koanf:"write"`
			Idle       time.Duration `koanf:"idle"`
			Request    time.Duration `koanf:"request"`
			Shutdown   time.Duration `koanf:"shutdown"`
		} `koanf:"timeouts"`
		RateLimit struct {
			Enabled bool    `koanf:"enabled"`
			RPS     float64 `koanf:"rps" validate:"min=0"`
			Burst   int     `koanf:"burst" validate:"min=0"`
		} `koanf:"rateLimit"`
	} `koanf:"http"`

	Database struct {
		URL             string        `koanf:"url" validate:"required"`
		MaxOpenConns    int           `koanf:"maxOpenConns"`
		MaxIdleConns    int           `koanf:"maxIdleConns"`
		ConnMaxLifetime time.Duration `koanf:"connMaxLifetime"`
		Migrate         bool          `koanf:"migrate"`
	} `koanf:"database"`

	Kafka struct {
		Enabled      bool          `koanf:"enabled"`
		Brokers      []string      `koanf:"brokers" validate:"required_if=Enabled true"`
		Topic        string        `koanf:"topic" validate:"required_if=Enabled true"`
		GroupID      string        `koanf:"groupId"`
		WriteTimeout time.Duration `koanf:"writeTimeout"`
	} `koanf:"kafka"`

	Auth struct {
		JWTSecret      string        `koanf:"jwtSecret" validate:"required,min=32"`
		Issuer         string        `koanf:"issuer"`
		AccessTokenTTL time.Duration `koanf:"accessTokenTTL" validate:"min=1s"`
		BcryptCost     int           `koanf:"bcryptCost"`
		CookieSecure   bool          `koanf:"cookieSecure"`
	} `koanf:"auth"`

	Catalog struct {
		MaxPageSize int `koanf:"maxPageSize" validate:"min=1"`
	} `koanf:"catalog"`

	// Pricing values are decimal strings.
	Pricing struct {
		FreeShippingThreshold string `koanf:"freeShippingThreshold" validate:"required"`
		ShippingFee           string `koanf:"shippingFee" validate:"required"`
		TaxRate               string `koanf:"taxRate" validate:"required"`
	} `koanf:"pricing"`
}

type Log struct {
	Pretty bool   `koanf:"pretty"`
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing overrides it. The
// database URL and JWT secret have no usable default.
func Default() *Config {
	cfg := new(Config)
	cfg.Env.Name = "development"
	cfg.Env.ServiceName = "storefront"
	cfg.Env.Log.Level = "info"

	cfg.HTTP.Port = 5000
	cfg.HTTP.MaxBodyBytes = 1 << 20
	cfg.HTTP.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	cfg.HTTP.Timeouts.Read = 15 * time.Second
	cfg.HTTP.Timeouts.ReadHeader = 5 * time.Second
	cfg.HTTP.Timeouts.Write = 15 * time.Second
	cfg.HTTP.Timeouts.Idle = 60 * time.Second
	cfg.HTTP.Timeouts.Request = 10 * time.Second
	cfg.HTTP.Timeouts.Shutdown = 10 * time.Second
	cfg.HTTP.RateLimit.Enabled = true
	cfg.HTTP.RateLimit.RPS = 20
	cfg.HTTP.RateLimit.Burst = 40

	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 5 * time.Minute
	cfg.Database.Migrate = true

	cfg.Kafka.Topic = "cart-activity"
	cfg.Kafka.GroupID = "storefront-activity"
	cfg.Kafka.WriteTimeout = 5 * time.Second

	cfg.Auth.Issuer = "storefront"
	cfg.Auth.AccessTokenTTL = 7 * 24 * time.Hour
	cfg.Auth.BcryptCost = 12

	cfg.Catalog.MaxPageSize = 100

	cfg.Pricing.FreeShippingThreshold = "50"
	cfg.Pricing.ShippingFee = "9.99"
	cfg.Pricing.TaxRate = "0.08"
	return cfg
}

// Load reads the config file at path, or SHOP_CONFIG, or ./config.yaml, then
// applies SHOP_ environment overrides on top of Default. An explicitly named
// file must exist; the implicit ./config.yaml is optional.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path, explicit = defaultPath, false
	}

	k := koanf.New(".")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	existing := k.Raw()
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if key == PathEnv {
				return "", nil
			}
			return canonicalizeEnvKey(strings.TrimPrefix(key, EnvPrefix), existing), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			ZeroFields:       true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that pricing values parse.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.CartPricing(); err != nil {
		return err
	}
	return nil
}

// CartPricing converts the pricing section to decimals.
func (c *Config) CartPricing() (cart.Pricing, error) {
	threshold, err := decimal.NewFromString(c.Pricing.FreeShippingThreshold)
	if err != nil {
		return cart.Pricing{}, fmt.Errorf("pricing.freeShippingThreshold: %w", err)
	}
	fee, err := decimal.NewFromString(c.Pricing.ShippingFee)
	if err != nil {
		return cart.Pricing{}, fmt.Errorf("pricing.shippingFee: %w", err)
	}
	rate, err := decimal.NewFromString(c.Pricing.TaxRate)
	if err != nil {
		return cart.Pricing{}, fmt.Errorf("pricing.taxRate: %w", err)
	}
	if threshold.IsNegative() || fee.IsNegative() || rate.IsNegative() {
		return cart.Pricing{}, errors.New("pricing values must not be negative")
	}
	return cart.Pricing{FreeShippingThreshold: threshold, ShippingFee: fee, TaxRate: rate}, nil
}

// canonicalizeEnvKey maps DATABASE_MAXOPENCONNS onto the key spelling already
// present in the loaded file (database.maxOpenConns) so env values override
// file values instead of sitting beside them.
func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}
	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
