// Package furrygarden looks up plants by name and tells whether they are
// safe for pets.
//
// A Catalog loads two curated partitions of plant records, one pet-safe and
// one pet-toxic, normalizes them into a single corpus, and answers
// typo-tolerant searches over common names, alternate names, latin names and
// Polish names:
//
//	src, _ := source.NewCSVDir("data")
//	catalog, _ := furrygarden.NewCatalog(src)
//	defer catalog.Close()
//
//	if err := catalog.Initialize(ctx); err != nil {
//		return err
//	}
//	results, _ := catalog.Search("spider plnt")
//	toxic, _ := catalog.Toxic()
//
// Initialize may be called any number of times from any goroutine; the data
// is fetched once. A partition that cannot be read leaves the catalog usable
// with the remaining records, and Status reports what went wrong.
package furrygarden
