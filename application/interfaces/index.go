package interfaces

// ApplicationContext carries a parsed request body and transport context
// into a controller without tying the controller to gin.
type ApplicationContext[T interface{}] struct {
	Body   *T
	Ctx    interface{}
	Keys   map[string]any
	Header map[string][]string
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	if ac.Keys == nil {
		return nil
	}
	return ac.Keys[key]
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	if ac.Header == nil {
		return nil
	}
	values, found := ac.Header[key]
	if !found || len(values) == 0 {
		return nil
	}
	return &values[0]
}
