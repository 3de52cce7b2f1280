package scan

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newScan := func(id string, createdAt time.Time) *Scan {
		return &Scan{
			ID:             id,
			MaskedNumber:   "411111******1111",
			ExpiryDate:     "12/28",
			CardHolderName: "JOHN SMITH",
			Source:         "image/png",
			BlockCount:     3,
			CreatedAt:      createdAt,
		}
	}

	Describe("SaveScan", func() {
		It("should make the scan retrievable", func() {
			Expect(db.SaveScan(newScan("test-id", time.Now()))).To(Succeed())

			saved, err := db.GetScan("test-id")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.MaskedNumber).To(Equal("411111******1111"))
			Expect(saved.CardHolderName).To(Equal("JOHN SMITH"))
		})

		It("should overwrite a scan with the same ID", func() {
			Expect(db.SaveScan(newScan("test-id", time.Now()))).To(Succeed())
			updated := newScan("test-id", time.Now())
			updated.ExpiryDate = "01/30"
			Expect(db.SaveScan(updated)).To(Succeed())

			saved, err := db.GetScan("test-id")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ExpiryDate).To(Equal("01/30"))
		})
	})

	Describe("GetScan", func() {
		When("scan does not exist", func() {
			It("returns ErrNotFound", func() {
				_, err := db.GetScan("non-existent")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListScans", func() {
		When("no scans exist", func() {
			It("should return an empty slice", func() {
				scans, err := db.ListScans()
				Expect(err).NotTo(HaveOccurred())
				Expect(scans).NotTo(BeNil())
				Expect(scans).To(BeEmpty())
			})
		})

		When("scans exist", func() {
			BeforeEach(func() {
				base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
				Expect(db.SaveScan(newScan("a", base))).To(Succeed())
				Expect(db.SaveScan(newScan("b", base.Add(2*time.Hour)))).To(Succeed())
				Expect(db.SaveScan(newScan("c", base.Add(time.Hour)))).To(Succeed())
			})

			It("should return them newest first", func() {
				scans, err := db.ListScans()
				Expect(err).NotTo(HaveOccurred())
				ids := []string{scans[0].ID, scans[1].ID, scans[2].ID}
				Expect(ids).To(Equal([]string{"b", "c", "a"}))
			})
		})
	})

	Describe("DeleteScan", func() {
		It("should remove the scan", func() {
			Expect(db.SaveScan(newScan("test-id", time.Now()))).To(Succeed())
			Expect(db.DeleteScan("test-id")).To(Succeed())

			_, err := db.GetScan("test-id")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("returns ErrNotFound for an unknown id", func() {
			Expect(db.DeleteScan("non-existent")).To(MatchError(ErrNotFound))
		})
	})

	Describe("NewBoltDB", func() {
		It("should reopen an existing database with its data", func() {
			Expect(db.SaveScan(newScan("persisted", time.Now()))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.GetScan("persisted")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
