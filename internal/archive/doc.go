// Package archive reads zip-based comic archives (CBZ) and writes combined
// archives.
//
// # Reading
//
// Open loads the central directory of a zip file and exposes its entries in
// the reader's native enumeration order. Pages returns the non-directory
// entries ordered by name (stable) or left in native order:
//
//	a, err := archive.Open("chapter.cbz")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	for _, e := range a.Pages(archive.OrderByName) {
//	    rc, err := e.Open()
//	    ...
//	}
//
// Native order is whatever the zip central directory lists. It is not a
// sort by physical byte offset and callers must not rely on it being one.
//
// # Combining
//
// Combiner writes the entries of several archives into one zip. Every entry
// is renamed to "<index>_<name>_<entry>" with a nine digit zero-padded
// source index, so a lexicographic sort of the combined archive keeps each
// source as one contiguous block, in source order, with its internal order
// preserved.
//
// # RAR input
//
// Repack converts a RAR-based comic archive (CBR) into a zip so the rest of
// the pipeline only ever deals with zip files.
package archive
