package fixtures

const (
	ValidEmail    = "mse23-cbanda@mubas.ac.mw"
	OtherEmail    = "mse22-tphiri@mubas.ac.mw"
	ValidUsername = "chisomo.banda"
	OtherUsername = "tiwonge_phiri"
	ValidPassword = "Abc12345"
	FrontendURL   = "http://localhost:3000"
	SessionSecret = "session-secret-for-tests"
)
