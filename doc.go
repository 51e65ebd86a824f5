// Package resumepdf renders HTML resumes to PDF in headless Chromium and
// publishes the result to remote storage, falling back to local disk.
//
// # Quick Start
//
//	conv, err := resumepdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, resumepdf.Input{
//	    HTML:     "<html><body><h1>Jane Doe</h1></body></html>",
//	    FileName: "abc123.pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Publish.URL, result.Publish.Origin)
//
// With no remote store configured the file lands in public/pdfs and the
// URL is "/pdfs/abc123.pdf".
//
// # Pipeline
//
//  1. Executable resolution: an explicit override path wins; otherwise a
//     RuntimeProvider supplies the packaged (downloaded) or system browser.
//     Directories are scanned for well-known executable names.
//  2. Rendering: one browser process per call, network-idle wait, then
//     print to a fixed page size with zero margins and backgrounds.
//  3. Publishing: remote stores in order (blob API, S3), then local disk.
//
// # Errors
//
// Failures are classified by sentinel and wrapped with context:
//
//	ErrExecutableNotFound  no browser could be located
//	ErrRender              launch, load or capture failed (see RenderError.Stage)
//	ErrPublish             even the local fallback failed
//
// Use errors.Is to branch and errors.As to reach *ExecutableNotFoundError,
// *RenderError or *PublishError.
//
// # Storage
//
//	blob := resumepdf.NewBlobStore(resumepdf.BlobConfig{Token: token})
//	s3, err := resumepdf.NewS3Store(ctx, resumepdf.S3Config{Bucket: "resumes"})
//	pub := resumepdf.NewPublisher(resumepdf.PublisherConfig{
//	    Remotes: []resumepdf.RemoteStore{blob, s3},
//	    Local:   resumepdf.NewLocalStore("public", "https://cv.example.com"),
//	})
//	conv, err := resumepdf.NewConverter(resumepdf.WithPublisher(pub))
package resumepdf
