package httpx

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Size    *int   `json:"size,omitempty"`
	Data    any    `json:"data"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, envelope{Status: "success", Data: data})
}

// List writes data together with its element count.
func List(w http.ResponseWriter, data any, size int) {
	WriteJSON(w, http.StatusOK, envelope{Status: "success", Size: &size, Data: data})
}

// Created writes a 201 with a Location header pointing at the new resource.
func Created(w http.ResponseWriter, location string, data any) {
	w.Header().Set("Location", location)
	WriteJSON(w, http.StatusCreated, envelope{Status: "success", Data: data})
}

func OKMessage(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, envelope{Status: "success", Message: message, Data: data})
}
