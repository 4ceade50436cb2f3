package dwarf

// DW_FORM constants needed by a DWARF4/32-bit reader (DWARF4 §7.5.6).
const (
	dwFormAddr         = 0x01
	dwFormBlock2       = 0x03
	dwFormBlock4       = 0x04
	dwFormData2        = 0x05
	dwFormData4        = 0x06
	dwFormData8        = 0x07
	dwFormString       = 0x08
	dwFormBlock        = 0x09
	dwFormBlock1       = 0x0a
	dwFormData1        = 0x0b
	dwFormFlag         = 0x0c
	dwFormSdata        = 0x0d
	dwFormStrp         = 0x0e
	dwFormUdata        = 0x0f
	dwFormRefAddr      = 0x10
	dwFormRef1         = 0x11
	dwFormRef2         = 0x12
	dwFormRef4         = 0x13
	dwFormRef8         = 0x14
	dwFormRefUdata     = 0x15
	dwFormIndirect     = 0x16
	dwFormSecOffset    = 0x17
	dwFormExprloc      = 0x18
	dwFormFlagPresent  = 0x19
	dwFormStrx         = 0x1a
	dwFormAddrx        = 0x1b
	dwFormRefSup4      = 0x1c
	dwFormStrpSup      = 0x1d
	dwFormData16       = 0x1e
	dwFormLineStrp     = 0x1f
	dwFormRefSig8      = 0x20
	dwFormImplicitConst = 0x21
	dwFormLoclistx     = 0x22
	dwFormRnglistx     = 0x23
	dwFormRefSup8      = 0x24
	dwFormStrx1        = 0x25
	dwFormStrx2        = 0x26
	dwFormStrx3        = 0x27
	dwFormStrx4        = 0x28
	dwFormAddrx1       = 0x29
	dwFormAddrx2       = 0x2a
	dwFormAddrx3       = 0x2b
	dwFormAddrx4       = 0x2c
)

// DW_TAG constants relevant to function/inline/lexical-block resolution.
const (
	DwTagCompileUnit     = 0x11
	DwTagSubprogram      = 0x2e
	DwTagInlinedSubroutine = 0x1d
	DwTagLexicalBlock    = 0x0b
	DwTagVariable        = 0x34
	DwTagFormalParameter = 0x05
)

// DW_AT constants used by attribute decoding and resolution.
const (
	DwAtName           = 0x03
	DwAtByteSize       = 0x0b
	DwAtStmtList       = 0x10
	DwAtLowPC          = 0x11
	DwAtHighPC         = 0x12
	DwAtLanguage       = 0x13
	DwAtCompDir        = 0x1b
	DwAtConstValue     = 0x1c
	DwAtUpperBound     = 0x2f
	DwAtProducer       = 0x25
	DwAtPrototyped     = 0x27
	DwAtAbstractOrigin = 0x31
	DwAtCount          = 0x37
	DwAtDataMemberLoc  = 0x38
	DwAtDeclFile       = 0x3a
	DwAtDeclLine       = 0x3b
	DwAtDeclaration    = 0x3c
	DwAtEncoding       = 0x3e
	DwAtExternal       = 0x3f
	DwAtFrameBase      = 0x40
	DwAtSpecification  = 0x47
	DwAtType           = 0x49
	DwAtRanges         = 0x55
	DwAtCallFile       = 0x58
	DwAtCallLine       = 0x59
	DwAtCallColumn     = 0x57
	DwAtSibling        = 0x01
)
