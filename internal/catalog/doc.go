// Package catalog turns spreadsheet-exported product sheets into the published
// product catalog.
//
// This package is the heart of the build, containing the normalization and
// identifier logic independent of the CLI, the HTTP layer, or where artifacts
// are stored. It can be used by the build command, the server, or tests without
// modification.
//
// # Pipeline
//
// A build flows through five stages:
//
//  1. [Reader] decodes one CSV source (BOM stripped, headers cleaned, blank
//     lines dropped, short rows padded) and applies the admission rule.
//  2. [Aggregate] discovers every *.csv source in a directory and concatenates
//     their rows in lexicographic source order, then row order.
//  3. [Registry] assigns each record a URL-safe slug that is unique across the
//     whole build. Collisions become base-2, base-3, ... in arrival order.
//  4. [Project] maps a record onto the fixed published shape, [CatalogEntry].
//  5. [Build] emits one scannable code per entry and writes the catalog
//     document as the final, atomic step.
//
// # Determinism
//
// Slugs are a pure function of the slug-source text and arrival order, and the
// document encoder emits keys in a fixed order. Running [Build] twice over the
// same sources yields byte-identical documents and code artifacts, which keeps
// printed codes pointing at the same product across rebuilds.
//
// # Error Handling
//
// Only a failure to write the catalog document is fatal. An unreadable source
// is reported as a [*SourceError] and contributes no rows; a failed code
// artifact is logged and skipped.
package catalog
