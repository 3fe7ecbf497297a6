// Package extract implements the source extractor: the only component
// besides the merge executor that talks to the outside world.
//
// It retrieves external geographic datasets (countries, flat states,
// states-with-nested-cities) over HTTP, from local files, or from object
// storage, validates their shape, and flattens them into source records
// scoped to one parent. With snapshots enabled, every fetched payload is
// also published into the storage bucket so the exact inputs of a run stay
// replayable. Transport failures surface as *FetchError and malformed
// payloads as *ParseError; both are fatal for that one dataset run and
// abort nothing else.
package extract
