// Package environment names the deployment environment. The logger picks
// its level and format from it and authd forces Secure cookies in
// production.
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
package environment
