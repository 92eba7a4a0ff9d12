package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/solana/shortvec"
)

// Marshal returns the wire format of the transaction: the compact signature
// array followed by the message.
func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := decoder{r: bytes.NewReader(b)}

	sigs := make([]Signature, d.len("signature"))
	for i := range sigs {
		d.read(sigs[i][:], "signature")
	}
	if d.err != nil {
		return d.err
	}

	var m Message
	if err := m.Unmarshal(b[len(b)-d.r.Len():]); err != nil {
		return err
	}

	t.Signatures = sigs
	t.Message = m
	return nil
}

// Marshal returns the legacy wire format of the message, which is also the
// payload that gets signed.
func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	b.WriteByte(m.Header.NumSignatures)
	b.WriteByte(m.Header.NumReadonlySigned)
	b.WriteByte(m.Header.NumReadOnly)

	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		b.Write(a)
	}

	b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		b.WriteByte(i.ProgramIndex)
		_, _ = shortvec.EncodeLen(b, len(i.Accounts))
		b.Write(i.Accounts)
		_, _ = shortvec.EncodeLen(b, len(i.Data))
		b.Write(i.Data)
	}

	return b.Bytes()
}

// Unmarshal decodes a legacy message. Versioned messages, out of range
// account indexes and trailing bytes are rejected.
func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	// Versioned messages set the high bit of the first byte.
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	d := decoder{r: bytes.NewReader(b)}

	var decoded Message
	decoded.Header.NumSignatures = d.byte("num signatures")
	decoded.Header.NumReadonlySigned = d.byte("num readonly signed")
	decoded.Header.NumReadOnly = d.byte("num readonly")

	decoded.Accounts = make([]ed25519.PublicKey, d.len("account"))
	for i := range decoded.Accounts {
		decoded.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		d.read(decoded.Accounts[i], "account")
	}

	d.read(decoded.RecentBlockhash[:], "recent blockhash")

	decoded.Instructions = make([]CompiledInstruction, d.len("instruction"))
	for i := range decoded.Instructions {
		c := &decoded.Instructions[i]
		c.ProgramIndex = d.byte("program index")
		c.Accounts = make([]byte, d.len("instruction account"))
		d.read(c.Accounts, "instruction accounts")
		c.Data = make([]byte, d.len("instruction data"))
		d.read(c.Data, "instruction data")
	}
	if d.err != nil {
		return d.err
	}
	if d.r.Len() > 0 {
		return errors.Errorf("%d trailing bytes after message", d.r.Len())
	}

	for i, c := range decoded.Instructions {
		if int(c.ProgramIndex) >= len(decoded.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}
		for _, index := range c.Accounts {
			if int(index) >= len(decoded.Accounts) {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}
	}

	*m = decoded
	return nil
}

// decoder reads from r until the first error, after which every read is a
// no-op and err holds the cause.
type decoder struct {
	r   *bytes.Reader
	err error
}

func (d *decoder) byte(field string) byte {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadByte()
	if err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
	return v
}

func (d *decoder) len(field string) int {
	if d.err != nil {
		return 0
	}
	n, err := shortvec.DecodeLen(d.r)
	if err != nil {
		d.err = errors.Wrapf(err, "failed to read %s length", field)
		return 0
	}
	// Every element takes at least one byte.
	if n > d.r.Len() {
		d.err = errors.Errorf("%s length %d exceeds remaining %d bytes", field, n, d.r.Len())
		return 0
	}
	return n
}

func (d *decoder) read(dst []byte, field string) {
	if d.err != nil {
		return
	}
	if _, err := io.ReadFull(d.r, dst); err != nil {
		d.err = errors.Wrapf(err, "failed to read %s", field)
	}
}
