package cardscan

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Options", func() {
	Describe("ParseNamePosition", func() {
		It("should accept the known positions", func() {
			p, err := ParseNamePosition(" aboveCardNumber ")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(AboveCardNumber))

			p, err = ParseNamePosition("belowCardNumber")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(BelowCardNumber))
		})

		It("should reject anything else", func() {
			_, err := ParseNamePosition("left")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DefaultOptions", func() {
		It("should search below the card number for names up to 26 characters", func() {
			opts := DefaultOptions()
			Expect(opts.ScanExpiryDate).To(BeTrue())
			Expect(opts.ScanCardHolderName).To(BeFalse())
			Expect(opts.CardHolderNamePositions).To(ConsistOf(BelowCardNumber))
			Expect(opts.MaxCardHolderNameLength).To(Equal(26))
			Expect(opts.Logger).NotTo(BeNil())
			Expect(opts.Now).NotTo(BeNil())
		})
	})

	Describe("withDefaults", func() {
		It("should fill the fields a literal leaves unusable", func() {
			opts := Options{MaxCardHolderNameLength: -1}.withDefaults()
			Expect(opts.MaxCardHolderNameLength).To(Equal(26))
			Expect(opts.Logger).NotTo(BeNil())
			Expect(opts.Now).NotTo(BeNil())
		})

		It("should keep a configured name length", func() {
			Expect(Options{MaxCardHolderNameLength: 12}.withDefaults().MaxCardHolderNameLength).To(Equal(12))
		})
	})

	Describe("isBlackListed", func() {
		It("should merge the caller's words with the defaults", func() {
			opts := DefaultOptions()
			opts.CardHolderNameBlackListedWords = []string{" Gold Member "}
			Expect(opts.isBlackListed("GOLD MEMBER")).To(BeTrue())
			Expect(opts.isBlackListed("Mastercard")).To(BeTrue())
			Expect(opts.isBlackListed("JOHN SMITH")).To(BeFalse())
		})
	})

	Describe("debug logging", func() {
		var (
			buf  *bytes.Buffer
			opts Options
		)

		BeforeEach(func() {
			buf = &bytes.Buffer{}
			opts = testOptions()
			opts.Logger = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			opts.MaxCardHolderNameLength = 5
		})

		When("debug logs are disabled", func() {
			It("should write nothing", func() {
				Expect(isValidName("JOHN SMITH", opts)).To(BeFalse())
				Expect(buf.String()).To(BeEmpty())
			})
		})

		When("debug logs are enabled", func() {
			BeforeEach(func() {
				opts.EnableDebugLogs = true
			})

			It("should report the configured maximum on length rejections", func() {
				Expect(isValidName("JOHN SMITH", opts)).To(BeFalse())
				Expect(buf.String()).To(ContainSubstring("max_card_holder_name_length=5"))
			})

			It("should not change the outcome", func() {
				frame := NewRecognitionResult("4111 1111 1111 1111", "JOHN SMITH")
				d, found := NewFrameScanner(opts).ScanSingleFrame(frame)
				Expect(found).To(BeTrue())
				Expect(d.CardHolderName).To(BeEmpty())
			})
		})
	})
})
