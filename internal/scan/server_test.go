package scan

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/invoice-scan/internal/scanning"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		detector    *mockDetector
		storage     *mockStorage
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		// One handler per request a spec may make; unused handlers are fine.
		ghttpServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		detector = newMockDetector()
		storage = newMockStorage()
		service = NewService(db, detector, storage, NewMachine(NewCell()))
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	uploadFrame := func(filename string, content []byte) *http.Response {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(content)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/frames", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decodeState := func(resp *http.Response) map[string]any {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		var view map[string]any
		Expect(json.Unmarshal(body, &view)).To(Succeed())
		return view
	}

	Describe("handleIndex", func() {
		It("serves the display page", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Invoice Scan"))
		})
	})

	Describe("handleGetState", func() {
		It("reports idle before any frame arrives", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/state")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeState(resp)).To(HaveKeyWithValue("status", "idle"))
		})
	})

	Describe("handleUploadFrame", func() {
		When("the frame yields a raw-value candidate", func() {
			BeforeEach(func() {
				detector.candidates = []scanning.Candidate{
					{RawText: strPtr("1234567890128"), Symbology: scanning.SymbologyEAN13},
				}
				setupServer()
			})

			It("responds with the success snapshot", func() {
				resp := uploadFrame("frame.png", []byte("frame data"))
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				view := decodeState(resp)
				Expect(view).To(HaveKeyWithValue("status", "success"))
				Expect(view).To(HaveKeyWithValue("raw_value", "1234567890128"))
				Expect(view).To(HaveKeyWithValue("format", "EAN 13"))
			})

			It("updates the state snapshot endpoint", func() {
				resp := uploadFrame("frame.png", []byte("frame data"))
				resp.Body.Close()

				stateResp, err := http.Get(ghttpServer.URL() + "/api/state")
				Expect(err).NotTo(HaveOccurred())
				Expect(decodeState(stateResp)).To(HaveKeyWithValue("status", "success"))
			})
		})

		When("the frame yields an invoice candidate", func() {
			BeforeEach(func() {
				detector.candidates = []scanning.Candidate{
					{RawText: strPtr(validInvoiceJSON), Symbology: scanning.SymbologyQRCode},
				}
				setupServer()
			})

			It("responds with the structured record and no raw value", func() {
				resp := uploadFrame("frame.png", []byte("frame data"))
				view := decodeState(resp)
				Expect(view).To(HaveKeyWithValue("status", "success"))
				Expect(view).To(HaveKey("invoice"))
				Expect(view).NotTo(HaveKey("raw_value"))
			})
		})

		When("the frame yields no candidates", func() {
			It("responds with the error snapshot, status OK", func() {
				resp := uploadFrame("frame.png", []byte("frame data"))
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				view := decodeState(resp)
				Expect(view).To(HaveKeyWithValue("status", "error"))
				Expect(view).To(HaveKeyWithValue("message", "No barcode detected"))
			})
		})

		When("the detector cannot analyze the frame", func() {
			BeforeEach(func() {
				detector.detectErr = errors.New("bad image")
				setupServer()
			})

			It("responds with Bad Request", func() {
				resp := uploadFrame("frame.png", []byte("not an image"))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("no file is attached", func() {
			It("responds with Bad Request", func() {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				Expect(writer.Close()).To(Succeed())

				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/frames", body)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", writer.FormDataContentType())

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleResetState", func() {
		BeforeEach(func() {
			detector.candidates = []scanning.Candidate{
				{RawText: strPtr("ABC"), Symbology: scanning.SymbologyCode39},
			}
			setupServer()
		})

		It("returns the state to idle", func() {
			resp := uploadFrame("frame.png", []byte("frame data"))
			resp.Body.Close()

			resetResp, err := http.Post(ghttpServer.URL()+"/api/state/reset", "", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resetResp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeState(resetResp)).To(HaveKeyWithValue("status", "idle"))
		})
	})

	Describe("handleListScans", func() {
		When("scans exist", func() {
			BeforeEach(func() {
				db.scans["id1"] = &Scan{ID: "id1", RawValue: "A", Format: "ITF"}
				db.scans["id2"] = &Scan{ID: "id2", RawValue: "B", Format: "ITF"}
				setupServer()
			})

			It("returns all scans as JSON", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/scans")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				var scans []*Scan
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(json.Unmarshal(body, &scans)).To(Succeed())
				Expect(scans).To(HaveLen(2))
			})
		})

		When("no scans exist", func() {
			It("returns an empty array, not null", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/scans")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(MatchJSON("[]"))
			})
		})
	})

	Describe("handleGetScan", func() {
		BeforeEach(func() {
			db.scans["id1"] = &Scan{ID: "id1", RawValue: "A", Format: "ITF"}
			setupServer()
		})

		It("returns the scan", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/scans/id1")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var scan Scan
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &scan)).To(Succeed())
			Expect(scan.ID).To(Equal("id1"))
		})

		When("the scan does not exist", func() {
			It("returns Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/scans/missing")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("handleDeleteScan", func() {
		BeforeEach(func() {
			db.scans["id1"] = &Scan{ID: "id1", Filename: "id1_frame.png"}
			storage.files["id1_frame.png"] = []byte("data")
			setupServer()
		})

		It("deletes the scan", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/scans/id1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.scans).To(BeEmpty())
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		It("rejects requests without credentials", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/state")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("accepts requests with valid credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/state", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))

			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("rejects requests with wrong credentials", func() {
			req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/state", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:wrong")))

			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})
})
