package main

// @title FreshSave Catalog API
// @version 1.0
// @description Products, stores, favorites and scan statistics for FreshSave.

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
