package rowcursor

// LoadMod is run on a value after it has been loaded.
// It can change the value or reject it with an error
type LoadMod[T any] func(T) (T, error)

// Mod returns a loader that runs the mods, in order, on every value the
// given loader returns without an error
func Mod[T any](l Loader[T], mods ...LoadMod[T]) Loader[T] {
	return NewLoader(l.ModelID(), func(v Value) (T, error) {
		t, err := l.Load(v)
		if err != nil {
			return t, err
		}

		for _, m := range mods {
			if t, err = m(t); err != nil {
				return t, err
			}
		}

		return t, nil
	})
}
