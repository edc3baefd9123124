// Package areena provides a read-only client for the Yle Areena catalog API.
//
// The catalog is spread over two hosts: the metadata API
// (external.api.yle.fi) serves categories, services, schedules, series and
// programs, while the Areena host serves per-series episode listings. Every
// response is cached on disk so repeated queries within a time-to-live never
// reach the network.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Fetcher: Retrieves one JSON document, serving it from the cache when fresh
//   - Paginator: Walks offset/limit pages until the reported total is reached
//   - Normalizer: Turns raw records into Category, Season, Episode, Series and Program
//   - Client: The catalog operations, implementing the API interface
//   - Errors: Sentinel and structured error types
//
// # Usage
//
// Create a client with your application credentials:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := areena.NewClient(
//		areena.Credentials{AppID: "your-app-id", AppKey: "your-app-key"},
//		logger,
//		areena.WithCacheDir(".cache"),
//		areena.WithRequestDelay(200*time.Millisecond),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List the on-demand episodes of one season
//	ctx := context.Background()
//	episodes, err := client.ListEpisodesBySeries(ctx, "1-4555656", "1-4553280")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Availability
//
// Episodes and programs carry the window of their first on-demand
// publication event. A window without a published end is open-ended; it is
// rendered as ending FarFuture after the moment of rendering.
//
// # Error Handling
//
// The package defines several error types:
//
//   - ErrInvalidConfig: Invalid client configuration or arguments
//   - ErrNotFound: HTTP 404, or an empty episode or season listing
//   - ErrBadResponse: Any other non-200 status or a non-JSON body
//   - ErrMalformed: A body or timestamp that could not be decoded
//   - ErrConnectivity: Transport failure, never retried
//   - NotFoundError, ResponseError: Structured errors carrying the URL
//
// URLs in errors and log entries never contain the app key:
//
//	var respErr *areena.ResponseError
//	if errors.As(err, &respErr) && respErr.IsUnauthorized() {
//		// Check the credentials
//	}
package areena
