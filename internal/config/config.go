package config

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
	DefaultAdmin struct {
		Email    string
		Password string
	}
	Offers struct {
		// AllowResubmission lets a bank file more than one offer on the
		// same application. When false (the default), a second submission
		// is rejected with a conflict.
		AllowResubmission bool
	}
	RedisServer  string
	KafkaServers string
}

// Product policy constants. These are commercial decisions, not derived
// values; change them deliberately.
const (
	// UnlockPrice is the one-time fee (in rupees) to reveal the full offer
	// comparison for a single application.
	UnlockPrice float64 = 199

	// UnlockOfferThreshold is the number of eligible offers an application
	// must collect before it is presented to the borrower as ready to unlock.
	UnlockOfferThreshold = 3
)

// PlanPrices maps a premium plan to its price in rupees. Plans outside this
// table are rejected, never silently priced.
var PlanPrices = map[string]float64{
	"silver":   499,
	"gold":     999,
	"platinum": 1999,
}
