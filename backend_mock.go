//go:build mock

package main

const defaultBackend = "mock"
