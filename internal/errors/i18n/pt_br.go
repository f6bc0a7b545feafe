package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeUnknown: "Ocorreu um erro inesperado",

		// Validation
		CodeOrdinanceTitleRequired:    "O título da portaria não pode ficar vazio",
		CodeOrdinanceContentRequired:  "O conteúdo da portaria não pode ficar vazio",
		CodeOrdinanceAuthorRequired:   "O autor da portaria é obrigatório",
		CodeRejectionReasonRequired:   "O motivo da devolução é obrigatório",
		CodeSignatureModeInvalid:      "Exatamente um modo de assinatura deve ser selecionado",
		CodeSignatureReasonRequired:   "Assinaturas não digitais exigem uma justificativa",
		CodeSignatureAttachmentNeeded: "Assinaturas manuais exigem o anexo digitalizado",
		CodeActorRequired:             "O usuário responsável é obrigatório",
		CodeRequestInvalid:            "A requisição está malformada",
		CodeBookFormatInvalid:         "O formato de numeração deve conter exatamente um marcador {N}",

		// Lifecycle state
		CodeInvalidStatusTransition: "Não é possível mover a portaria de {{.FromStatus}} para {{.ToStatus}}",
		CodeStatusDisallowsEdit:     "A situação {{.Status}} não permite edição da portaria",
		CodeReviewAlreadyClaimed:    "Outro revisor já assumiu esta portaria",
		CodeReviewerMismatch:        "Somente o revisor designado pode executar esta ação",

		// Authorization
		CodeNotAuthorized: "Você não tem permissão para executar esta ação",

		// Storage
		CodeNotFound:       "Registro não encontrado",
		CodeStorageFailure: "A operação não pôde ser concluída; tente novamente",

		// Numbering
		CodeAllocationContention: "O livro de numeração está ocupado; tente novamente",

		// Integrity
		CodeIntegrityViolation: "O conteúdo do documento não corresponde ao hash assinado",

		// Processing
		CodeRenderFailure: "A geração do documento falhou; a portaria não foi publicada",
	},
}
