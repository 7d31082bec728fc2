package fhirprofiler

// Code is a stable diagnostic code. Codes never change meaning between
// releases; tooling may key behavior off them.
type Code string

// Metadata diagnostics.
const (
	// CodeMetaMissingURL: profile has no canonical URL.
	CodeMetaMissingURL Code = "META_001"
	// CodeMetaMissingName: profile has no computable name.
	CodeMetaMissingName Code = "META_002"
	// CodeMetaInvalidName: name violates naming conventions.
	CodeMetaInvalidName Code = "META_003"
	// CodeMetaInvalidStatus: status is not a known publication status.
	CodeMetaInvalidStatus Code = "META_004"
	// CodeMetaInvalidURL: canonical URL is not a well-formed URL.
	CodeMetaInvalidURL Code = "META_005"
)

// Cardinality diagnostics.
const (
	// CodeCardMinGreaterThanMax: element min exceeds its max.
	CodeCardMinGreaterThanMax Code = "CARD_001"
	// CodeCardExceedsBase: refinement loosens the base cardinality.
	CodeCardExceedsBase Code = "CARD_002"
	// CodeCardRequiredUnderOptional: required child under an optional parent.
	CodeCardRequiredUnderOptional Code = "CARD_003"
	// CodeCardSliceSumExceedsMax: sum of slice minimums exceeds parent max.
	CodeCardSliceSumExceedsMax Code = "CARD_004"
	// CodeCardSlicingOnSingleton: slicing declared on an element with max 1.
	CodeCardSlicingOnSingleton Code = "CARD_005"
)

// Type-constraint diagnostics.
const (
	// CodeTypeUnknown: type code is not a known FHIR type.
	CodeTypeUnknown Code = "TYPE_001"
	// CodeTypeDuplicate: the same type code appears more than once.
	CodeTypeDuplicate Code = "TYPE_002"
	// CodeTypeInvalidTargetProfile: Reference target profile is malformed.
	CodeTypeInvalidTargetProfile Code = "TYPE_003"
)

// Slicing diagnostics.
const (
	// CodeSliceNoDiscriminator: slicing defined without discriminators.
	CodeSliceNoDiscriminator Code = "SLICE_001"
	// CodeSliceEmptyDiscriminatorPath: discriminator path is empty.
	CodeSliceEmptyDiscriminatorPath Code = "SLICE_002"
	// CodeSliceInvalidDiscriminatorPath: discriminator path is malformed.
	CodeSliceInvalidDiscriminatorPath Code = "SLICE_003"
	// CodeSliceInvalidName: slice name violates the naming rules.
	CodeSliceInvalidName Code = "SLICE_004"
	// CodeSliceDuplicateName: two slices share a name.
	CodeSliceDuplicateName Code = "SLICE_005"
	// CodeSliceClosedEmpty: closed slicing declares no slices.
	CodeSliceClosedEmpty Code = "SLICE_006"
	// CodeSliceWithoutSlicing: slices present without a slicing definition.
	CodeSliceWithoutSlicing Code = "SLICE_007"
)

// Binding diagnostics.
const (
	// CodeBindingEmptyValueSet: binding has an empty value-set URL.
	CodeBindingEmptyValueSet Code = "BIND_001"
	// CodeBindingInvalidValueSet: value-set URL is not well formed.
	CodeBindingInvalidValueSet Code = "BIND_002"
	// CodeBindingNonBindableType: binding attached to a non-bindable type.
	CodeBindingNonBindableType Code = "BIND_003"
	// CodeBindingUnknownStrength: binding strength is not a known strength.
	CodeBindingUnknownStrength Code = "BIND_004"
)

// Invariant diagnostics.
const (
	// CodeInvariantEmptyKey: invariant has an empty key.
	CodeInvariantEmptyKey Code = "INV_001"
	// CodeInvariantEmptyExpression: invariant has an empty expression.
	CodeInvariantEmptyExpression Code = "INV_002"
	// CodeInvariantDuplicateKey: the same invariant key appears twice in the tree.
	CodeInvariantDuplicateKey Code = "INV_003"
	// CodeInvariantInvalidExpression: FHIRPath expression fails to parse.
	CodeInvariantInvalidExpression Code = "INV_004"
	// CodeInvariantUnbalancedDelimiters: expression has unbalanced delimiters.
	CodeInvariantUnbalancedDelimiters Code = "INV_005"
)

// Reference diagnostics.
const (
	// CodeRefUnresolvableBase: base definition URL cannot be resolved.
	CodeRefUnresolvableBase Code = "REF_001"
	// CodeRefUnresolvableProfile: type profile URL cannot be resolved.
	CodeRefUnresolvableProfile Code = "REF_002"
	// CodeRefUnresolvableTarget: reference target profile cannot be resolved.
	CodeRefUnresolvableTarget Code = "REF_003"
)

// Terminology diagnostics.
const (
	// CodeTermUnresolvableValueSet: bound value set cannot be resolved.
	CodeTermUnresolvableValueSet Code = "TERM_001"
)

// External/internal diagnostics.
const (
	// CodeValidationTimeout: an async validation layer timed out.
	CodeValidationTimeout Code = "EXT_001"
	// CodeExternalValidator: produced by the external full validator.
	CodeExternalValidator Code = "EXT_002"
)
