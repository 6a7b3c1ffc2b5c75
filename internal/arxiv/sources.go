package arxiv

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bibtools/bibfetch/internal/ident"
)

// SourceBaseURL is where arXiv serves e-print source bundles.
const SourceBaseURL = "https://export.arxiv.org/e-print"

// Sources downloads the e-print source bundle for a paper. Most
// submissions are a gzipped tar of the LaTeX sources; the rest are a
// single gzipped TeX file or a bare PDF.
func (c *Client) Sources(ctx context.Context, id string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ident.ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := ident.CheckResponse("arxiv.org", resp.StatusCode); err != nil {
		return nil, err
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading e-print: %v", ident.ErrNetworkError, err)
	}
	return blob, nil
}

// BBL returns the contents of every .bbl bibliography bundled with the
// paper's source, in archive order. Papers whose source is a bare PDF or
// a single TeX file carry none; that is an empty result, not an error.
func (c *Client) BBL(ctx context.Context, id string) ([]string, error) {
	blob, err := c.Sources(ctx, id)
	if err != nil {
		return nil, err
	}
	return bblMembers(blob)
}

// bblMembers pulls the .bbl members out of an e-print blob.
func bblMembers(blob []byte) ([]string, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		// Not gzipped: a PDF-only submission.
		return nil, nil
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var bbls []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single gzipped TeX file rather than a tar bundle.
			return bbls, nil
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".bbl") {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", hdr.Name, err)
		}
		bbls = append(bbls, string(data))
	}
	return bbls, nil
}
