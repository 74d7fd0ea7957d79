package main

// General API documentation for swaggo. Run `swag init -g cmd/predictd/docs.go`
// to regenerate docs, then build with -tags=swagger to serve them.
//
// @title           predictd API
// @version         1.0
// @description     HTTP API for live next-token prediction with log probabilities.
//
// @contact.name   predictd maintainers
// @contact.url    https://github.com/your-org/predictd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
