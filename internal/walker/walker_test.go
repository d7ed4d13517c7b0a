package walker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/xyzprep/internal/walker"
)

var _ = Describe("Walk", func() {
	var root string

	touch := func(rel string) {
		path := filepath.Join(root, rel)
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte("0\n"), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		touch("a.xyz")
		touch("notes.txt")
		touch("sub/b.xyz")
		touch("sub/deeper/c.xyz.gz")
		touch("sub/deeper/c_energy.npy")
	})

	It("visits matching files recursively in lexical order", func() {
		var seen, bases []string
		n, err := walker.Walk(context.Background(), root, []string{".xyz"}, func(path, base string) error {
			rel, _ := filepath.Rel(root, path)
			seen = append(seen, filepath.ToSlash(rel))
			bases = append(bases, base)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(seen).To(Equal([]string{"a.xyz", "sub/b.xyz"}))
		Expect(bases).To(Equal([]string{"a", "b"}))
	})

	It("strips the longest matching extension", func() {
		var bases []string
		_, err := walker.Walk(context.Background(), root, []string{".xyz", ".xyz.gz"}, func(path, base string) error {
			bases = append(bases, base)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(bases).To(ConsistOf("a", "b", "c"))
	})

	It("halts on the first error", func() {
		boom := errors.New("boom")
		calls := 0
		n, err := walker.Walk(context.Background(), root, []string{".xyz"}, func(path, base string) error {
			calls++
			return boom
		})
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(ContainSubstring("a.xyz"))
		Expect(calls).To(Equal(1))
		Expect(n).To(BeZero())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		n, err := walker.Walk(ctx, root, []string{".xyz"}, func(path, base string) error {
			return nil
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(n).To(BeZero())
	})

	It("follows symlinks to trajectory files and skips dangling ones", func() {
		Expect(os.Symlink(filepath.Join(root, "a.xyz"), filepath.Join(root, "link.xyz"))).To(Succeed())
		Expect(os.Symlink(filepath.Join(root, "gone.xyz"), filepath.Join(root, "stale.xyz"))).To(Succeed())

		var bases []string
		n, err := walker.Walk(context.Background(), root, []string{".xyz"}, func(path, base string) error {
			bases = append(bases, base)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(bases).To(Equal([]string{"a", "link", "b"}))
	})

	It("fails for a missing root", func() {
		_, err := walker.Walk(context.Background(), filepath.Join(root, "missing"), []string{".xyz"}, func(string, string) error {
			return nil
		})
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})
})

var _ = Describe("BaseName", func() {
	DescribeTable("trims the trajectory extension",
		func(path string, exts []string, want string) {
			Expect(walker.BaseName(path, exts)).To(Equal(want))
		},
		Entry("plain", "/data/glass.xyz", []string{".xyz"}, "glass"),
		Entry("compressed", "/data/glass.xyz.zst", []string{".xyz", ".xyz.zst"}, "glass"),
		Entry("unmatched", "/data/glass.extxyz", []string{".xyz"}, "glass"),
	)
})
