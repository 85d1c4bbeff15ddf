package secs2

// Shortcut constructors mirroring the SML type mnemonics.

var (
	L = NewListItem
	A = NewASCIIItem
	J = NewJIS8Item
)

func B(values ...byte) Item {
	return NewBinaryItem(values)
}

func BOOLEAN(values ...bool) Item {
	return NewBooleanItem(values)
}

func I1(values ...int64) Item {
	return NewIntItem(1, values)
}

func I2(values ...int64) Item {
	return NewIntItem(2, values)
}

func I4(values ...int64) Item {
	return NewIntItem(4, values)
}

func I8(values ...int64) Item {
	return NewIntItem(8, values)
}

func U1(values ...uint64) Item {
	return NewUintItem(1, values)
}

func U2(values ...uint64) Item {
	return NewUintItem(2, values)
}

func U4(values ...uint64) Item {
	return NewUintItem(4, values)
}

func U8(values ...uint64) Item {
	return NewUintItem(8, values)
}

func F4(values ...float64) Item {
	return NewFloatItem(4, values)
}

func F8(values ...float64) Item {
	return NewFloatItem(8, values)
}
