package email

// Providers selectable with EMAIL_PROVIDER.
const (
	ProviderConsole  = "console"
	ProviderPostmark = "postmark"
)

// Config selects the email provider. Postmark tokens are only required when
// the postmark provider is selected.
type Config struct {
	Provider             string `env:"EMAIL_PROVIDER" envDefault:"console"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"no-reply@recruitly.io"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@recruitly.io"`
}
