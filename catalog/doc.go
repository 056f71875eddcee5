// Package catalog loads and discovers the vehicles that seed an
// assembly run.
//
// A catalog is a set of Car records, typically harvested from brand
// listing pages and persisted as a JSON seed file. FileSource turns a
// seed file into the entity stream the assembly engine consumes, and
// SeedWatcher keeps long-running deployments in sync with seed files
// that change on disk.
package catalog
