// Copyright (c) 2025 Chatbox
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

const (
	msgProfileFailed = "Failed to load profile"
	msgUpdateFailed  = "Failed to update profile"
	msgUploadFailed  = "Failed to upload avatar"
)

// GetProfile calls GET profile with Authorization header.
func (h *HTTP) GetProfile(ctx context.Context, accessToken string) (Profile, error) {
	var out Profile
	err := h.do(ctx, call{
		method:   http.MethodGet,
		path:     h.endpoints.Profile,
		bearer:   accessToken,
		fallback: msgProfileFailed,
		authed:   true,
	}, &out)
	if err != nil {
		return Profile{}, err
	}
	return out, nil
}

// UpdateProfile calls PUT profile with the patch and returns the updated profile.
func (h *HTTP) UpdateProfile(ctx context.Context, accessToken string, patch ProfilePatch) (Profile, error) {
	body, err := jsonBody(patch)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	err = h.do(ctx, call{
		method:      http.MethodPut,
		path:        h.endpoints.Profile,
		bearer:      accessToken,
		body:        body,
		contentType: "application/json",
		fallback:    msgUpdateFailed,
		authed:      true,
	}, &out)
	if err != nil {
		return Profile{}, err
	}
	return out, nil
}

// UploadAvatar posts data as the multipart "file" field and returns the stored avatar URL.
func (h *HTTP) UploadAvatar(ctx context.Context, accessToken, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(filename))))
	hdr.Set("Content-Type", detectContentType(filename, data))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	err = h.do(ctx, call{
		method:      http.MethodPost,
		path:        h.endpoints.Avatar,
		bearer:      accessToken,
		body:        &buf,
		contentType: mw.FormDataContentType(),
		fallback:    msgUploadFailed,
		authed:      true,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.AvatarURL, nil
}

// detectContentType prefers the file extension and falls back to sniffing the bytes.
func detectContentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
