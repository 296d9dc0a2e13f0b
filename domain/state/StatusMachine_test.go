package state_test

import (
	"reliefops/bizerror"
	"reliefops/domain"
	"reliefops/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StatusMachine", func() {
	Describe("DonationStatusMachine", func() {
		It("should expose the E-V-P vocabulary", func() {
			Expect(state.DonationStatusMachine.Statuses).To(Equal([]state.Status{
				{Code: "E", Name: "Entered"}, {Code: "V", Name: "Verified"}, {Code: "P", Name: "Posted"},
			}))
			Expect(state.DonationStatusMachine.InitialStatus().Code).To(Equal("E"))
		})

		It("should allow only the linear progression", func() {
			Ω(state.DonationStatusMachine.IsLegalTransition("E", "V")).Should(BeTrue())
			Ω(state.DonationStatusMachine.IsLegalTransition("V", "P")).Should(BeTrue())

			Ω(state.DonationStatusMachine.IsLegalTransition("E", "P")).Should(BeFalse())
			Ω(state.DonationStatusMachine.IsLegalTransition("V", "E")).Should(BeFalse())
			Ω(state.DonationStatusMachine.IsLegalTransition("P", "V")).Should(BeFalse())
			Ω(state.DonationStatusMachine.IsLegalTransition("P", "E")).Should(BeFalse())
		})

		It("should not allow accidental self-loops", func() {
			for _, status := range state.DonationStatusMachine.Statuses {
				legal, err := state.DonationStatusMachine.IsLegalTransition(status.Code, status.Code)
				Expect(err).To(BeNil())
				Expect(legal).To(BeFalse())
			}
		})

		It("should reject status codes outside the vocabulary", func() {
			legal, err := state.DonationStatusMachine.IsLegalTransition("E", "D")
			Expect(legal).To(BeFalse())
			Expect(err).To(Equal(bizerror.ErrUnknownStatusCode))

			legal, err = state.DonationStatusMachine.IsLegalTransition("X", "V")
			Expect(legal).To(BeFalse())
			Expect(err).To(Equal(bizerror.ErrUnknownStatusCode))
		})
	})

	Describe("TransferStatusMachine", func() {
		It("should expose the D-V-P-C vocabulary", func() {
			codes := []string{}
			for _, status := range state.TransferStatusMachine.Statuses {
				codes = append(codes, status.Code)
			}
			Expect(codes).To(Equal([]string{"D", "V", "P", "C"}))
		})

		It("should only carry transitions valid under both candidate readings of D and C", func() {
			Ω(state.TransferStatusMachine.IsLegalTransition("D", "V")).Should(BeTrue())
			Ω(state.TransferStatusMachine.IsLegalTransition("V", "P")).Should(BeTrue())
			Ω(state.TransferStatusMachine.IsLegalTransition("D", "C")).Should(BeTrue())
			Ω(state.TransferStatusMachine.IsLegalTransition("V", "C")).Should(BeTrue())

			// unresolved pairs stay rejected until the canonical mapping lands
			Ω(state.TransferStatusMachine.IsLegalTransition("C", "D")).Should(BeFalse())
			Ω(state.TransferStatusMachine.IsLegalTransition("C", "V")).Should(BeFalse())
			Ω(state.TransferStatusMachine.IsLegalTransition("P", "C")).Should(BeFalse())
			Ω(state.TransferStatusMachine.IsLegalTransition("D", "P")).Should(BeFalse())
		})

		It("should keep the graph reachable as data", func() {
			Expect(state.TransferStatusMachine.AvailableTransitions("D", "")).To(HaveLen(2))
			Expect(state.TransferStatusMachine.AvailableTransitions("", "C")).To(HaveLen(2))
			Expect(state.TransferStatusMachine.AvailableTransitions("D", "V")).To(Equal([]state.StatusTransition{
				{Name: "verify", From: "D", To: "V"},
			}))
		})
	})

	Describe("MachineOf", func() {
		It("should resolve machines for donation and transfer", func() {
			machine, err := state.MachineOf(domain.MethodDonation)
			Expect(err).To(BeNil())
			Expect(machine.Method).To(Equal(domain.MethodDonation))

			machine, err = state.MachineOf(domain.MethodTransfer)
			Expect(err).To(BeNil())
			Expect(machine.Method).To(Equal(domain.MethodTransfer))
		})

		It("should fail closed for procurement until its vocabulary is defined", func() {
			machine, err := state.MachineOf(domain.MethodProcurement)
			Expect(machine).To(BeNil())
			Expect(err).To(Equal(bizerror.ErrUnsupportedMethod))
		})

		It("should fail closed for unknown methods", func() {
			_, err := state.MachineOf(domain.Method("Loan"))
			Expect(err).To(Equal(bizerror.ErrUnsupportedMethod))
		})
	})

	Describe("IsLegalTransition", func() {
		It("should judge through the per-method registry", func() {
			Ω(state.IsLegalTransition(domain.MethodDonation, "E", "V")).Should(BeTrue())
			Ω(state.IsLegalTransition(domain.MethodTransfer, "D", "V")).Should(BeTrue())

			legal, err := state.IsLegalTransition(domain.MethodProcurement, "E", "V")
			Expect(legal).To(BeFalse())
			Expect(err).To(Equal(bizerror.ErrUnsupportedMethod))
		})

		It("should never coerce one method's codes into another's vocabulary", func() {
			legal, err := state.IsLegalTransition(domain.MethodDonation, "D", "C")
			Expect(legal).To(BeFalse())
			Expect(err).To(Equal(bizerror.ErrUnknownStatusCode))
		})
	})
})
