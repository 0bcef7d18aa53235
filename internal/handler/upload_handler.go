package handler

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Contact photos are shown as large avatars; anything bigger than this is
// downscaled before saving.
const maxPhotoDim = 512

// UploadContactPhoto accepts a multipart photo, downscales it to avatar
// size and stores it under the upload dir with a unique name. The returned
// URL goes into the contact's photo field in place of an emoji.
func (a *API) UploadContactPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "no photo in request")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "only image uploads are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read photo")
		return
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unsupported image format")
		return
	}

	img = downscale(img)

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "could not create upload directory")
		return
	}

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	filename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	path := filepath.Join(a.uploadDir, filename)

	out, err := os.Create(path)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not save photo")
		return
	}
	defer out.Close()

	if format == "png" {
		err = png.Encode(out, img)
	} else {
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not save photo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": fmt.Sprintf("%s/%s", a.uploadURL, filename)})
}

func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxPhotoDim && h <= maxPhotoDim {
		return img
	}

	scale := float64(maxPhotoDim) / float64(w)
	if h > w {
		scale = float64(maxPhotoDim) / float64(h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
