package handlers

import (
	"log"

	"chemstore/internal/upload"

	"github.com/gofiber/fiber/v2"
)

// formDocument returns the first file found under one of names in a multipart
// request, or nil if there is none. The returned close func is never nil.
func formDocument(c *fiber.Ctx, names ...string) (*upload.Document, func(), error) {
	for _, name := range names {
		fh, err := c.FormFile(name)
		if err != nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, func() {}, err
		}
		doc := &upload.Document{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		}
		return doc, func() {
			if err := f.Close(); err != nil {
				log.Printf("Error closing uploaded file %s: %v", fh.Filename, err)
			}
		}, nil
	}
	return nil, func() {}, nil
}
