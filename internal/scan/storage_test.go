package scan

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		It("writes the frame and returns its filename", func() {
			savedPath, err := storage.Save("frame.png", []byte("frame content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(savedPath).To(Equal("frame.png"))

			data, err := os.ReadFile(filepath.Join(tmpDir, "frame.png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("frame content")))
		})
	})

	Describe("Get", func() {
		BeforeEach(func() {
			_, err := storage.Save("frame.png", []byte("frame content"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the stored bytes", func() {
			data, err := storage.Get("frame.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("frame content")))
		})

		When("the frame does not exist", func() {
			It("returns the error", func() {
				_, err := storage.Get("missing.png")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			_, err := storage.Save("frame.png", []byte("frame content"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the frame", func() {
			Expect(storage.Delete("frame.png")).To(Succeed())
			_, err := storage.Get("frame.png")
			Expect(err).To(HaveOccurred())
		})

		When("the frame does not exist", func() {
			It("returns the error", func() {
				Expect(storage.Delete("missing.png")).NotTo(Succeed())
			})
		})
	})

	Describe("NewLocalStorage", func() {
		It("creates the base directory", func() {
			nested := filepath.Join(tmpDir, "a", "b")
			_, err := NewLocalStorage(nested)
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(nested)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})
	})
})
