package auth

// LoginPageData is the rendering state of the login screen.
type LoginPageData struct {
	Email     string
	Message   string
	Error     string
	Remember  bool
	Next      string
	LoginPath string
	CSRFToken string
}
