package billing

// Step paso del pipeline de certificación.
type Step string

const (
	StepValidation    Step = "validacion"
	StepSequence      Step = "secuencia"
	StepCode          Step = "cuf"
	StepDocument      Step = "xml"
	StepCertificate   Step = "certificado"
	StepSignature     Step = "firma"
	StepSerialization Step = "serializacion"
)

// CertificationResult resultado de Certify. Con Success=false, Step indica dónde se detuvo
// y Number conserva el número si alcanzó a asignarse (queda consumido: la numeración admite huecos).
type CertificationResult struct {
	Success           bool
	Number            int64
	SequenceAllocated bool
	CUF               string
	SignedXML         []byte

	Step  Step
	Cause string
	Err   error
}

func (r *CertificationResult) fail(step Step, err error) *CertificationResult {
	r.Success = false
	r.CUF = ""
	r.SignedXML = nil
	r.Step = step
	r.Cause = err.Error()
	r.Err = err
	return r
}
