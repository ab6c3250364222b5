package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/solana/shortvec"
)

// Marshal encodes the transaction in the legacy wire format
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	_, _ = shortvec.EncodeLen(&b, len(t.Signatures))
	for _, sig := range t.Signatures {
		b.Write(sig[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	buf := bytes.NewBuffer(b)

	numSignatures, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read signature count")
	}

	t.Signatures = make([]Signature, numSignatures)
	for i := range t.Signatures {
		if _, err := io.ReadFull(buf, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature %d", i)
		}
	}

	return t.Message.Unmarshal(buf.Bytes())
}

func (m Message) Marshal() []byte {
	var b bytes.Buffer

	b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	_, _ = shortvec.EncodeLen(&b, len(m.Accounts))
	for _, account := range m.Accounts {
		b.Write(account)
	}

	b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(&b, len(m.Instructions))
	for _, ix := range m.Instructions {
		b.WriteByte(ix.ProgramIndex)

		_, _ = shortvec.EncodeLen(&b, len(ix.Accounts))
		b.Write(ix.Accounts)

		_, _ = shortvec.EncodeLen(&b, len(ix.Data))
		b.Write(ix.Data)
	}

	return b.Bytes()
}

// Unmarshal decodes a legacy message. Versioned messages, out of range account
// indices and trailing bytes are rejected.
func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	buf := bytes.NewBuffer(b)

	var header [3]byte
	if _, err := io.ReadFull(buf, header[:]); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	m.Version = MessageVersionLegacy
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	numAccounts, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read account count")
	}
	m.Accounts = make([]ed25519.PublicKey, numAccounts)
	for i := range m.Accounts {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err := io.ReadFull(buf, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account %d", i)
		}
	}

	if _, err := io.ReadFull(buf, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent blockhash")
	}

	numInstructions, err := shortvec.DecodeLen(buf)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction count")
	}
	m.Instructions = make([]CompiledInstruction, numInstructions)
	for i := range m.Instructions {
		ix := &m.Instructions[i]

		if ix.ProgramIndex, err = buf.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d program index", i)
		}
		if int(ix.ProgramIndex) >= numAccounts {
			return errors.Errorf("instruction %d program index out of range: %d", i, ix.ProgramIndex)
		}

		if ix.Accounts, err = readLengthPrefixed(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d accounts", i)
		}
		for _, index := range ix.Accounts {
			if int(index) >= numAccounts {
				return errors.Errorf("instruction %d account index out of range: %d", i, index)
			}
		}

		if ix.Data, err = readLengthPrefixed(buf); err != nil {
			return errors.Wrapf(err, "failed to read instruction %d data", i)
		}
	}

	if buf.Len() > 0 {
		return errors.Errorf("%d unexpected trailing bytes", buf.Len())
	}
	return nil
}

func readLengthPrefixed(buf *bytes.Buffer) ([]byte, error) {
	length, err := shortvec.DecodeLen(buf)
	if err != nil {
		return nil, err
	}

	value := make([]byte, length)
	if _, err := io.ReadFull(buf, value); err != nil {
		return nil, err
	}
	return value, nil
}
