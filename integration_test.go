// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build integration

package methodoverride_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/justinas/alice"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/vfaronov/httpheader"

	"rivaas.dev/methodoverride"
	"rivaas.dev/methodoverride/bodyparser"
	"rivaas.dev/methodoverride/echooverride"
)

const overrideHeader = "X-HTTP-Method-Override"

var routedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// chiStack mounts one route per method, answering "<route> <original>".
func chiStack(f *methodoverride.Filter) http.Handler {
	r := chi.NewRouter()
	for _, m := range routedMethods {
		r.MethodFunc(m, "/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, m+" "+methodoverride.GetOriginalMethod(r))
		})
	}

	return alice.New(bodyparser.New(), f.Handler).Then(r)
}

func ginStack(f *methodoverride.Filter) http.Handler {
	engine := gin.New()
	for _, m := range routedMethods {
		engine.Handle(m, "/items/:id", func(c *gin.Context) {
			c.String(http.StatusOK, m+" "+methodoverride.GetOriginalMethod(c.Request))
		})
	}

	return alice.New(bodyparser.New(), f.Handler).Then(engine)
}

func echoStack(f *methodoverride.Filter) http.Handler {
	e := echo.New()
	e.Pre(echooverride.New(f, echooverride.WithBodyParser(bodyparser.NewParser())))
	for _, m := range routedMethods {
		e.Add(m, "/items/:id", func(c echo.Context) error {
			return c.String(http.StatusOK, m+" "+echooverride.OriginalMethod(c))
		})
	}

	return e
}

type stackFactory func(*methodoverride.Filter) http.Handler

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func formRequest(method string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, "/items/1", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

var _ = Describe("Method Override Integration", Label("integration"), func() {
	stacks := map[string]stackFactory{
		"chi":  chiStack,
		"gin":  ginStack,
		"echo": echoStack,
	}

	for name, stack := range stacks {
		Describe(name+" stack", func() {
			Context("with a header getter", func() {
				var h http.Handler

				BeforeEach(func() {
					h = stack(methodoverride.MustNew(
						methodoverride.WithGetter(methodoverride.Header(overrideHeader)),
					))
				})

				It("should route POST with a hint to the hinted method", func() {
					req := httptest.NewRequest(http.MethodPost, "/items/1", nil)
					req.Header.Set(overrideHeader, "put")

					w := do(h, req)

					Expect(w.Code).To(Equal(http.StatusOK))
					Expect(w.Body.String()).To(Equal("PUT POST"))
					Expect(httpheader.Vary(w.Header())).To(HaveKey("X-Http-Method-Override"))
				})

				It("should use the first of several comma separated values", func() {
					req := httptest.NewRequest(http.MethodPost, "/items/1", nil)
					req.Header.Set(overrideHeader, "DELETE, PUT")

					Expect(do(h, req).Body.String()).To(Equal("DELETE POST"))
				})

				It("should keep POST for an unknown hint", func() {
					req := httptest.NewRequest(http.MethodPost, "/items/1", nil)
					req.Header.Set(overrideHeader, "BOGUS")

					w := do(h, req)

					Expect(w.Body.String()).To(Equal("POST POST"))
					Expect(httpheader.Vary(w.Header())).To(HaveKey("X-Http-Method-Override"))
				})

				It("should leave GET requests alone", func() {
					req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
					req.Header.Set(overrideHeader, "DELETE")

					w := do(h, req)

					Expect(w.Body.String()).To(Equal("GET GET"))
					Expect(w.Header().Values("Vary")).To(BeEmpty())
				})
			})

			Context("with the default body getter", func() {
				var h http.Handler

				BeforeEach(func() {
					h = stack(methodoverride.MustNew())
				})

				It("should route a form with _method", func() {
					w := do(h, formRequest(http.MethodPost, url.Values{"_method": {"delete"}, "name": {"ada"}}))

					Expect(w.Body.String()).To(Equal("DELETE POST"))
					Expect(w.Header().Values("Vary")).To(BeEmpty())
				})

				It("should route a JSON body with _method", func() {
					req := httptest.NewRequest(http.MethodPost, "/items/1", strings.NewReader(`{"_method":"PATCH"}`))
					req.Header.Set("Content-Type", "application/json")

					Expect(do(h, req).Body.String()).To(Equal("PATCH POST"))
				})

				It("should keep POST without a hint", func() {
					w := do(h, formRequest(http.MethodPost, url.Values{"name": {"ada"}}))

					Expect(w.Body.String()).To(Equal("POST POST"))
				})
			})
		})
	}

	Describe("Chained filters", func() {
		It("should apply a second filter to the first one's result", func() {
			first := methodoverride.MustNew(methodoverride.WithGetter(methodoverride.Header(overrideHeader)))
			second := methodoverride.MustNew(
				methodoverride.WithGetter(methodoverride.Query("_method")),
				methodoverride.WithMethods(http.MethodPatch),
			)

			r := chi.NewRouter()
			r.Delete("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, r.Method+" "+methodoverride.GetOriginalMethod(r))
			})
			h := alice.New(first.Handler, second.Handler).Then(r)

			req := httptest.NewRequest(http.MethodPost, "/items/1?_method=delete", nil)
			req.Header.Set(overrideHeader, "PATCH")

			Expect(do(h, req).Body.String()).To(Equal("DELETE POST"))
		})
	})

	Describe("Body limits", func() {
		It("should reject oversized bodies under a strict limit", func() {
			f := methodoverride.MustNew()
			r := chi.NewRouter()
			r.Delete("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			h := alice.New(
				bodyparser.New(bodyparser.WithLimit(16), bodyparser.WithStrictLimit(true)),
				f.Handler,
			).Then(r)

			w := do(h, formRequest(http.MethodPost, url.Values{
				"_method": {"DELETE"},
				"padding": {strings.Repeat("x", 64)},
			}))

			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
		})
	})
})
