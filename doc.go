// Package fixgen generates synthetic test fixtures at scale: batches of zip
// archives, each holding many independently generated XML records, and the
// inverse path that ingests such archives back into flat CSV extracts.
//
// The pipeline runs two nested levels of bounded parallelism: an outer worker
// pool where one task builds or reads one whole archive, and an inner pool
// inside each archive task where one task encodes or decodes one record.
// Unique record ids are reserved in bulk before any parallel work starts, so
// the id registry never sees contention during the hot phase.
//
// # Quick start
//
// Create 50 archives with 100 records each under ./out:
//
//	fixgen --create --zip-count 50 --xml-count 100 --output-dir ./out
//
// Parse them back into levels.csv and names.csv:
//
//	fixgen --parse --source-dir ./out --output-dir ./out
//
// # Layout
//
//   - pkg/idgen: collision-free unique id reservation
//   - pkg/record: the TestObject model and its XML codec
//   - pkg/archive: zip container assembly and extraction
//   - pkg/aggregate: the levels/names CSV extracts
//   - internal/pipeline: the create and parse drivers
//   - cmd/fixgen: the command line entry point
package fixgen
