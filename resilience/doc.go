// Package resilience holds the failure-handling primitives the engine puts
// around its transports: Retry for transient write errors and Breaker to
// stop dispatching to a sink that keeps failing.
//
//	br := resilience.NewBreaker(resilience.BreakerConfig{Name: "kafka", MaxFailures: 5})
//	err := br.Execute(func() error {
//	    return resilience.Retry(ctx, resilience.DefaultRetryConfig(), write)
//	})
package resilience
