package main

// @title FreshSave Scanner API
// @version 1.0
// @description Resolves scanned barcodes to products and keeps per-user scan history.

// @host localhost:8084
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
