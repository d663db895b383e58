package plugin_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/internal/plugin"
)

var _ = Describe("Paths", func() {
	var tempDir string

	BeforeEach(func() {
		var err error

		tempDir, err = filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("ValidatePath", func() {
		It("should accept anything without an allow list", func() {
			Expect(plugin.ValidatePath("/anywhere/x.so", nil)).To(Succeed())
		})

		It("should accept files inside an allowed directory", func() {
			path := filepath.Join(tempDir, "again.so")
			Expect(os.WriteFile(path, []byte("x"), 0o600)).To(Succeed())

			Expect(plugin.ValidatePath(path, []string{tempDir})).To(Succeed())
		})

		It("should reject files outside the allowed directories", func() {
			other := filepath.Join(tempDir, "other")
			Expect(os.MkdirAll(other, 0o755)).To(Succeed())

			err := plugin.ValidatePath(filepath.Join(tempDir, "again.so"), []string{other})
			Expect(err).To(MatchError(plugin.ErrPathNotAllowed))
		})

		It("should not accept sibling directories sharing a prefix", func() {
			Expect(os.MkdirAll(filepath.Join(tempDir, "vst"), 0o755)).To(Succeed())
			Expect(os.MkdirAll(filepath.Join(tempDir, "vst-evil"), 0o755)).To(Succeed())

			err := plugin.ValidatePath(
				filepath.Join(tempDir, "vst-evil", "x.so"),
				[]string{filepath.Join(tempDir, "vst")},
			)
			Expect(err).To(MatchError(plugin.ErrPathNotAllowed))
		})

		It("should accept the allowed directory itself and paths through symlinks", func() {
			realDir := filepath.Join(tempDir, "realDir")
			Expect(os.MkdirAll(realDir, 0o755)).To(Succeed())
			link := filepath.Join(tempDir, "link")
			Expect(os.Symlink(realDir, link)).To(Succeed())

			Expect(plugin.ValidatePath(realDir, []string{link})).To(Succeed())
			Expect(plugin.ValidatePath(filepath.Join(link, "new.so"), []string{realDir})).To(Succeed())
		})

		It("should reject parent traversal", func() {
			allowed := filepath.Join(tempDir, "vst")
			Expect(os.MkdirAll(allowed, 0o755)).To(Succeed())

			err := plugin.ValidatePath(filepath.Join(allowed, "..", "x.so"), []string{allowed})
			Expect(err).To(MatchError(plugin.ErrPathNotAllowed))
		})

		It("should reject an empty path", func() {
			Expect(plugin.ValidatePath("", []string{tempDir})).To(MatchError(plugin.ErrPathNotAllowed))
		})
	})
})
