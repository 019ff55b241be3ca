package documents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qintermediary/exchangeflow/internal/engine"
)

// CertificateGenerator issues completion certificates for closed exchanges.
// The reference implementation only allocates a document reference and logs
// the issuance, a production deployment would render and store the document
// behind the same interface.
type CertificateGenerator struct{}

func NewCertificateGenerator() *CertificateGenerator {
	return &CertificateGenerator{}
}

func (g *CertificateGenerator) GenerateCompletionCertificate(ctx context.Context, snapshot engine.CaseSnapshot) (string, error) {
	if snapshot.Case == nil {
		return "", fmt.Errorf("cannot generate certificate without a case")
	}
	docRef := fmt.Sprintf("CERT-%s", uuid.New().String())
	slog.Info("completion certificate issued",
		"caseRef", snapshot.Case.CaseRef,
		"documentRef", docRef,
		"clientName", snapshot.Details.ClientName)
	return docRef, nil
}
