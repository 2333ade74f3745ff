package website

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanguardtable/vanguard/src/assets"
	"github.com/vanguardtable/vanguard/src/bestiary"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/oops"
)

type resolutionData struct {
	Reference string          `json:"image_url"`
	Source    bestiary.Source `json:"source"`
	Matched   bool            `json:"matched"`
}

func ResolveCreatureImage(c *RequestContext) ResponseData {
	name := c.Req.URL.Query().Get("name")
	if name == "" {
		return c.RejectRequest("A creature name is required")
	}

	resolution := c.Bestiary.Resolve(name, c.Req.URL.Query().Get("image_url"))

	var res ResponseData
	res.WriteJson(resolutionData{
		Reference: resolution.Reference,
		Source:    resolution.Source,
		Matched:   resolution.Matched,
	})
	return res
}

func ListCreatureImages(c *RequestContext) ResponseData {
	entries := c.Bestiary.ListAll()

	numLocal := 0
	for _, entry := range entries {
		if entry.Source == bestiary.SourceLocal {
			numLocal++
		}
	}

	var res ResponseData
	res.WriteJson(struct {
		Creatures     []bestiary.Entry `json:"creatures"`
		Total         int              `json:"total"`
		LocalCount    int              `json:"local_count"`
		DatabaseCount int              `json:"database_count"`
	}{
		Creatures:     entries,
		Total:         len(entries),
		LocalCount:    numLocal,
		DatabaseCount: len(entries) - numLocal,
	})
	return res
}

func SearchCreatureImages(c *RequestContext) ResponseData {
	query := c.Req.URL.Query().Get("q")
	if query == "" {
		return c.RejectRequest("A search query is required")
	}

	limit := 0
	if limitStr := c.Req.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return c.RejectRequest("Limit must be a positive number")
		}
		limit = parsed
	}

	var res ResponseData
	res.WriteJson(c.Bestiary.Search(query, limit))
	return res
}

func AddCreatureImage(c *RequestContext) ResponseData {
	var body struct {
		Name     string `json:"name"`
		ImageUrl string `json:"image_url"`
	}
	if err := c.DecodeJson(&body); err != nil {
		return c.ErrorResponse(http.StatusBadRequest, err)
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.RejectRequest("A creature name is required")
	}
	if body.ImageUrl == "" {
		return c.RejectRequest("An image URL is required")
	}

	err := c.Bestiary.AddEntry(body.Name, body.ImageUrl)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to save creature lookup entry"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(struct {
		Added bool `json:"added"`
	}{true})
	return res
}

func RemoveCreatureImage(c *RequestContext) ResponseData {
	name := c.PathParams["name"]

	err := c.Bestiary.RemoveEntry(name)
	if err != nil {
		if errors.Is(err, bestiary.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to remove creature lookup entry"))
	}

	var res ResponseData
	res.WriteJson(struct {
		Removed bool `json:"removed"`
	}{true})
	return res
}

// Drops an uploaded image straight into the local image directory under the
// creature's normalized filename, where the next resolution scan will pick it
// up. Re-uploading a name overwrites the previous image.
func UploadCreatureImage(c *RequestContext) ResponseData {
	maxBytes := config.Config.Storage.MaxUploadBytes

	c.Req.Body = http.MaxBytesReader(c.Res, c.Req.Body, maxBytes)
	err := c.Req.ParseMultipartForm(maxBytes)
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "upload must be multipart form data no bigger than %d bytes", maxBytes))
	}

	name := c.Req.FormValue("name")
	if strings.TrimSpace(name) == "" {
		return c.RejectRequest("A creature name is required")
	}

	file, _, err := c.Req.FormFile("file")
	if err != nil {
		return c.ErrorResponse(http.StatusBadRequest, NewSafeError(err, "upload must contain a 'file' field"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to read upload"))
	}

	mimeType := http.DetectContentType(data)
	if !allowedUploadTypes[mimeType] {
		return c.RejectRequest("Only JPEG, PNG, GIF, and WebP images can be uploaded")
	}

	maxW := config.Config.Storage.MaxImageWidth
	maxH := config.Config.Storage.MaxImageHeight
	filename := bestiary.KeyToFilename(name) + ".jpg"
	normalized, err := assets.Normalize(data, maxW, maxH)
	if err != nil {
		// Store the original bytes with their real extension instead.
		c.Logger.Warn().Err(err).Msg("failed to normalize creature image; storing original bytes")
		normalized = data
		filename = bestiary.KeyToFilename(name) + extensionForMime(mimeType)
	}

	imageDir := config.Config.Bestiary.ImageDir
	err = os.MkdirAll(imageDir, os.ModePerm)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to create image directory"))
	}

	err = os.WriteFile(filepath.Join(imageDir, filename), normalized, 0644)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to write creature image"))
	}

	res := ResponseData{StatusCode: http.StatusCreated}
	res.WriteJson(struct {
		Name     string `json:"name"`
		ImageUrl string `json:"image_url"`
	}{
		Name:     bestiary.FilenameToKey(filename),
		ImageUrl: "/database_images/" + filename,
	})
	return res
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// Serves images from the local image directory.
func ServeDatabaseImage(c *RequestContext) ResponseData {
	filename := c.PathParams["filename"]
	if filename == "" || strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		return FourOhFour(c)
	}

	contents, err := os.ReadFile(filepath.Join(config.Config.Bestiary.ImageDir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to read creature image"))
	}

	var res ResponseData
	res.Write(contents)
	return res
}
