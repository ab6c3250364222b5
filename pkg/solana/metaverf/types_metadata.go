package metaverf

const (
	MaxNameLength      = 32
	MaxUriLength       = 200
	MaxAttributeLength = 64
)

type CollectionMetadata struct {
	Name string
	Uri  string
}

func (m *CollectionMetadata) Validate() error {
	if len(m.Name) > MaxNameLength || len(m.Uri) > MaxUriLength {
		return ErrMetadataTooLong
	}
	return nil
}

func (m *CollectionMetadata) size() int {
	return stringSize(m.Name) + stringSize(m.Uri)
}

func putCollectionMetadata(dst []byte, v *CollectionMetadata, offset *int) {
	putString(dst, v.Name, offset)
	putString(dst, v.Uri, offset)
}

func getCollectionMetadata(src []byte, dst *CollectionMetadata, offset *int) error {
	if err := getString(src, &dst.Name, offset); err != nil {
		return err
	}
	return getString(src, &dst.Uri, offset)
}

type CertificateMetadata struct {
	Name           string
	Uri            string
	StudentName    string
	CourseName     string
	CompletionDate string
	Grade          string
}

func (m *CertificateMetadata) Validate() error {
	if len(m.Name) > MaxNameLength || len(m.Uri) > MaxUriLength {
		return ErrMetadataTooLong
	}

	for _, attribute := range []string{m.StudentName, m.CourseName, m.CompletionDate, m.Grade} {
		if len(attribute) > MaxAttributeLength {
			return ErrMetadataTooLong
		}
	}

	return nil
}

// Attributes returns the certificate fields embedded on the minted asset, in
// a stable order
func (m *CertificateMetadata) Attributes() [][2]string {
	return [][2]string{
		{"student_name", m.StudentName},
		{"course_name", m.CourseName},
		{"completion_date", m.CompletionDate},
		{"grade", m.Grade},
	}
}

func (m *CertificateMetadata) size() int {
	return stringSize(m.Name) +
		stringSize(m.Uri) +
		stringSize(m.StudentName) +
		stringSize(m.CourseName) +
		stringSize(m.CompletionDate) +
		stringSize(m.Grade)
}

func putCertificateMetadata(dst []byte, v *CertificateMetadata, offset *int) {
	putString(dst, v.Name, offset)
	putString(dst, v.Uri, offset)
	putString(dst, v.StudentName, offset)
	putString(dst, v.CourseName, offset)
	putString(dst, v.CompletionDate, offset)
	putString(dst, v.Grade, offset)
}

func getCertificateMetadata(src []byte, dst *CertificateMetadata, offset *int) error {
	for _, field := range []*string{
		&dst.Name,
		&dst.Uri,
		&dst.StudentName,
		&dst.CourseName,
		&dst.CompletionDate,
		&dst.Grade,
	} {
		if err := getString(src, field, offset); err != nil {
			return err
		}
	}
	return nil
}
