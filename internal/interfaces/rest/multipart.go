package rest

import (
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
)

// bracketKey splits "data[slug]" into ("data", "slug", false) and
// "data[slug][]" into ("data", "slug", true). Plain keys have no slug.
func bracketKey(key string) (outer, inner string, list bool) {
	open := strings.Index(key, "[")
	end := strings.Index(key, "]")
	if open <= 0 || end < open {
		return key, "", false
	}
	return key[:open], key[open+1 : end], strings.HasSuffix(key, "[]") && end != len(key)-1
}

// ParseMultipartSubmission flattens a multipart submission into a
// SubmitRequest. Values under data[slug] become strings or uploads, values
// under data[slug][] become lists.
func ParseMultipartSubmission(form *multipart.Form) (*models.SubmitRequest, error) {
	req := &models.SubmitRequest{Data: map[string]interface{}{}}
	sawData := false

	keys := make([]string, 0, len(form.Value))
	for k := range form.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := form.Value[key]
		if len(values) == 0 {
			continue
		}
		outer, slug, list := bracketKey(key)
		switch {
		case slug != "" && outer == appErrors.KeyData:
			sawData = true
			if list {
				req.Data[slug] = toInterfaces(values)
			} else {
				req.Data[slug] = values[0]
			}
		case key == "risk_model":
			id, err := strconv.ParseInt(strings.TrimSpace(values[0]), 10, 64)
			if err != nil {
				return nil, appErrors.NewValidationError("risk_model", "A valid integer is required.")
			}
			req.SchemaID = id
		case key == "risk_model_name":
			req.SchemaName = values[0]
		}
	}

	fileKeys := make([]string, 0, len(form.File))
	for k := range form.File {
		fileKeys = append(fileKeys, k)
	}
	sort.Strings(fileKeys)

	for _, key := range fileKeys {
		headers := form.File[key]
		outer, slug, list := bracketKey(key)
		if slug == "" || outer != appErrors.KeyData || len(headers) == 0 {
			continue
		}
		sawData = true
		uploads := make([]interface{}, 0, len(headers))
		for _, fh := range headers {
			upload, err := readUpload(fh)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, upload)
		}
		if list {
			req.Data[slug] = uploads
		} else {
			req.Data[slug] = uploads[0]
		}
	}

	if !sawData {
		req.Data = nil
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader) (*models.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return &models.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
