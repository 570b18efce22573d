/*
Copyright © 2026 skyselvlz
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	// errExhausted means pickNext was called on a finished game.
	// Callers must check Finished() first, so hitting this is a bug.
	errExhausted = errors.New("no identities left to pick")

	// errNoActivePick means a score was requested with no pending pick.
	errNoActivePick = errors.New("no active pick to score")

	// errAssetUnavailable wraps transient temporary-link failures.
	errAssetUnavailable = errors.New("asset link unavailable")

	errBadIndex        = errors.New("index is not a number")
	errIndexOutOfRange = errors.New("index out of range")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
