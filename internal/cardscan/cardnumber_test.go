package cardscan

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FindCardNumber", func() {
	var (
		opts   Options
		blocks []string
		result FieldResult[string]
		ok     bool
	)

	BeforeEach(func() {
		opts = testOptions()
	})

	JustBeforeEach(func() {
		result, ok = FindCardNumber(NewRecognitionResult(blocks...), opts)
	})

	DescribeTable("accepted groupings",
		func(text, want string) {
			r, found := FindCardNumber(NewRecognitionResult(text), testOptions())
			Expect(found).To(BeTrue())
			Expect(r.Value).To(Equal(want))
		},
		Entry("space separated", "4111 1111 1111 1111", "4111111111111111"),
		Entry("dash separated", "4111-1111-1111-1111", "4111111111111111"),
		Entry("no separators", "4111111111111111", "4111111111111111"),
		Entry("amex 4-6-5", "3782 822463 10005", "378282246310005"),
		Entry("surrounded by text", "CARD NO 5500 0000 0000 0004 EXP", "5500000000000004"),
		Entry("full-width digits", "４１１１ １１１１ １１１１ １１１１", "4111111111111111"),
		Entry("19 digits 4-4-4-4-3", "6212 3456 7890 1234 569", "6212345678901234569"),
		Entry("19 digits dash separated", "6011-0000-0000-0000-001", "6011000000000000001"),
		Entry("19 digits no separators", "4111111111111111003", "4111111111111111003"),
		Entry("expiry month on the same line", "4111 1111 1111 1111 12/28", "4111111111111111"),
		Entry("expiry month after a dash", "4111 1111 1111 1111 12-28", "4111111111111111"),
	)

	When("a 19 digit number has a luhn-valid 16 digit prefix", func() {
		BeforeEach(func() {
			blocks = []string{"4111 1111 1111 1111 003"}
		})

		It("should return all 19 digits", func() {
			Expect(ok).To(BeTrue())
			Expect(result.Value).To(Equal("4111111111111111003"))
		})
	})

	When("the fifth group fails the luhn check", func() {
		BeforeEach(func() {
			blocks = []string{"4111 1111 1111 1111 112"}
		})

		It("should not fall back to the first 16 digits", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("several blocks hold card numbers", func() {
		BeforeEach(func() {
			blocks = []string{"ACME BANK", "4111 1111 1111 1111", "5500 0000 0000 0004"}
		})

		It("should return the first one in reading order", func() {
			Expect(ok).To(BeTrue())
			Expect(result.BlockIndex).To(Equal(1))
			Expect(result.Block.Text).To(Equal("4111 1111 1111 1111"))
			Expect(result.Value).To(Equal("4111111111111111"))
		})
	})

	When("the digit run is too short", func() {
		BeforeEach(func() {
			blocks = []string{"1234 5678 9012"}
		})

		It("should not find a card number", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the digit run is longer than any card number", func() {
		BeforeEach(func() {
			blocks = []string{"41111111111111111111111"}
		})

		It("should not find a card number", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the candidate is all zeros", func() {
		BeforeEach(func() {
			blocks = []string{"0000 0000 0000 0000"}
		})

		It("should reject it as noise", func() {
			Expect(ok).To(BeFalse())
		})

		When("repeated digits are allowed", func() {
			BeforeEach(func() {
				opts.RejectRepeatedDigits = false
			})

			It("should accept it", func() {
				Expect(ok).To(BeTrue())
				Expect(result.Value).To(Equal("0000000000000000"))
			})
		})
	})

	When("the candidate fails the luhn check", func() {
		BeforeEach(func() {
			blocks = []string{"4111 1111 1111 1112", "4111 1111 1111 1111"}
		})

		It("should skip to the next valid block", func() {
			Expect(ok).To(BeTrue())
			Expect(result.BlockIndex).To(Equal(1))
		})

		When("the luhn check is disabled", func() {
			BeforeEach(func() {
				opts.EnableLuhnCheck = false
			})

			It("should accept the first block", func() {
				Expect(ok).To(BeTrue())
				Expect(result.BlockIndex).To(Equal(0))
				Expect(result.Value).To(Equal("4111111111111112"))
			})
		})
	})

	When("there are no blocks", func() {
		BeforeEach(func() {
			blocks = nil
		})

		It("should not find a card number", func() {
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("luhnValid", func() {
	It("should accept well-known test numbers", func() {
		Expect(luhnValid("4111111111111111")).To(BeTrue())
		Expect(luhnValid("378282246310005")).To(BeTrue())
		Expect(luhnValid("6011111111111117")).To(BeTrue())
	})

	It("should reject a single changed digit", func() {
		Expect(luhnValid("4111111111111121")).To(BeFalse())
	})
})
