// Package environment propagates the deployment environment (development,
// staging, production) through context.Context, HTTP requests and log
// records.
//
// Parse normalizes the raw APP_ENV value and Middleware stores it on every
// request context, where handlers can branch on it (the error handler only
// exposes error details in development).
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	h = environment.Middleware(env)(h)
//
//	if environment.IsProduction(r.Context()) {
//	    // production-only behaviour
//	}
//
// Missing values resolve to the zero value ("").
package environment
