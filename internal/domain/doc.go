package domain

// Package domain contains the core business concepts for the pdf2image service.
// Keep this package free of transport (HTTP) and infrastructure (S3/Redis/MuPDF) concerns.
