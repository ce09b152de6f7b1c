// Package cbzconv converts comic-book archives (CBZ, and CBR repacked on
// the fly) into PDF or EPUB files under a bounded memory budget.
//
// # Quick Start
//
//	conv, err := cbzconv.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sources, err := cbzconv.FileSources("Series A/Chapter 12.cbz", "Series A/Chapter 13.cbz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := cbzconv.NewDirOutput("out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := conv.Convert(cbzconv.Job{
//	    Sources:      sources,
//	    Merge:        true,
//	    ChapterNames: true,
//	    Output:       out,
//	})
//	// res.Artifacts[0].Name == "Series A_12-13.pdf"
//
// # Pipeline
//
// For every source, or for the single archive built by merging all of
// them:
//
//  1. The archive is copied into the scratch directory and its page
//     entries are ordered by name or kept in archive order.
//  2. Pages are split into parts of at most Job.MaxPages pages. Each part
//     becomes one output file.
//  3. A part larger than Job.BatchSize is rendered in batches to
//     intermediate PDFs, which are then merged in order into the part.
//  4. Output names are derived from the series and chapter numbers, and
//     never overwrite a file already present in the output directory.
//
// Images that are not JPEG or PNG are transcoded to JPEG. With
// Job.Compress, every image is recompressed to JPEG quality 75. Each PDF
// page has the pixel size of its image.
//
// # Errors
//
// Unreadable sources, empty archives and undecodable pages are recorded in
// Result.Status and Result.Errors and the job continues. Only an unusable
// output directory aborts a job, with ErrOutputUnavailable. A job that
// produced nothing returns ErrNothingProduced together with its Result.
//
// # Concurrency
//
// A Converter runs one job at a time, sequentially. Jobs from different
// processes sharing a scratch directory must be kept apart with
// Converter.Lock. There is no cancellation once a job has started.
package cbzconv
