package opk

import "errors"

var (
	// Package errors 📦
	ErrUnopenablePackage = errors.New("unable to open package")
	ErrUnknownFormat     = errors.New("unknown package format")

	// Metadata errors 📄
	ErrCorruptMetadata     = errors.New("error loading meta-data")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrNoDocument          = errors.New("no metadata document is open")

	// Storage errors 📂
	ErrUnreadableDirectory = errors.New("unreadable directory")
)
