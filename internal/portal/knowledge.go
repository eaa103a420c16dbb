package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"onboarding_portal/internal/model"
)

func (c *Client) ListFiles(ctx context.Context) ([]model.KnowledgeFile, error) {
	var files []model.KnowledgeFile
	if err := c.Do(ctx, Request{Path: "/knowledge/files"}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile sends content as the multipart field "file".
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (*model.KnowledgeFile, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req := Request{
		Method: http.MethodPost,
		Path:   "/knowledge/upload",
		Body:   &buf,
		Header: http.Header{"Content-Type": []string{form.FormDataContentType()}},
	}

	var file model.KnowledgeFile
	if err := c.Do(ctx, req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/knowledge/files/" + escape(id)}, nil)
}

type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}

// DownloadFile opens the stored file. The caller must close Body.
func (c *Client) DownloadFile(ctx context.Context, id string) (*Download, error) {
	resp, err := c.Stream(ctx, Request{Path: "/knowledge/files/" + escape(id) + "/download"})
	if err != nil {
		return nil, err
	}

	d := &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	return d, nil
}
