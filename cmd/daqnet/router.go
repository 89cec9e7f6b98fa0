package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kasuganosora/daqnet/pkg/monitor"
)

// newRouter 指标服务路由
func newRouter(m *monitor.MetricsCollector) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}
