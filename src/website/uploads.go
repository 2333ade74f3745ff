package website

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanguardtable/vanguard/src/assets"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/oops"
)

type uploadResult struct {
	Url  string `json:"url"`
	Mime string `json:"mime"`
}

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func UploadImage(c *RequestContext) ResponseData {
	maxBytes := config.Config.Storage.MaxUploadBytes

	c.Req.Body = http.MaxBytesReader(c.Res, c.Req.Body, maxBytes)
	err := c.Req.ParseMultipartForm(maxBytes)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "upload must be multipart form data no bigger than %d bytes", maxBytes))
	}

	file, header, err := c.Req.FormFile("file")
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "upload must contain a 'file' field"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to read upload"))
	}

	// Trust the bytes, not the submitted Content-Type header.
	mimeType := http.DetectContentType(data)
	if !allowedUploadTypes[mimeType] {
		return c.RejectRequest("Only JPEG, PNG, GIF, and WebP images can be uploaded")
	}

	saved, err := c.Storage.Save(c, assets.SaveInput{
		Content:     data,
		Filename:    header.Filename,
		ContentType: mimeType,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to store upload"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(uploadResult{
		Url:  saved.Url,
		Mime: saved.ContentType,
	})
	return res
}

func DeleteUpload(c *RequestContext) ResponseData {
	filename := c.PathParams["filename"]

	deleted := c.Storage.Delete(c, "/uploads/"+filename)
	if !deleted && c.Storage.Mode() == assets.ModeCloud {
		// Cloud references are full object URLs; let clients pass just the
		// object key as the filename.
		deleted = c.Storage.Delete(c, config.Config.Storage.Bucket+"/"+filename)
	}

	var res ResponseData
	res.WriteJson(struct {
		Deleted bool `json:"deleted"`
	}{deleted})
	return res
}

// Serves locally stored uploads. In cloud mode references point at the blob
// store directly and this route never gets hit for real content.
func ServeUpload(c *RequestContext) ResponseData {
	key := c.PathParams["path"]
	if key == "" || strings.Contains(key, "..") {
		return FourOhFour(c)
	}

	path := filepath.Join(config.Config.Storage.UploadRoot, filepath.FromSlash(key))
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to read upload from disk"))
	}

	var res ResponseData
	res.Write(contents)
	return res
}
