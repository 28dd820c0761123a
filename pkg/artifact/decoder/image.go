package decoder

// imageDecoder passes the payload through opaquely. Image content is a
// base64/URL blob; there is nothing textual to extract.
type imageDecoder struct{}

func (imageDecoder) DeltaPayload(fragment string, _ *Scratch) string {
	return fragment
}

func (imageDecoder) Finalize(raw string) Result {
	return Result{Payload: raw}
}
