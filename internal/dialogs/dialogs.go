// Package dialogs centralizes every user-facing message the bot sends.
//
// Texts are Portuguese and use WhatsApp formatting (*bold*, ```monospace```).
// Messages that need interpolation are exposed as functions; fixed texts as
// constants.
package dialogs

import "fmt"

// General, menus and help.
const (
	OperationCanceled = "Operação cancelada."
	NotUnderstood     = "Desculpe, não entendi. Envie /help para ver o que eu posso fazer."
	GenericFailure    = "Ops, algo deu errado ao salvar. 😓 Por favor, tente novamente."

	MenuMain = "O que deseja fazer?"

	HelpText = "Olá! Eu sou seu assistente de estudos. Aqui está um resumo de tudo que posso fazer:\n\n" +
		"💡 *Dica:* envie /start a qualquer momento para ver o menu interativo.\n\n" +
		"🚀 *Configuração Rápida*\n" +
		"• /fatec - Configura sua grade horária completa de forma automática.\n\n" +
		"📚 *Matérias*\n" +
		"• /grade - Exibe sua grade horária completa.\n" +
		"• /addmateria - Cadastra uma nova matéria manualmente.\n" +
		"• /gerenciarmaterias - Permite editar ou excluir matérias.\n" +
		"• /relatorio - Gera um relatório detalhado de uma matéria.\n\n" +
		"🗓️ *Trabalhos e Provas*\n" +
		"• /calendario - Lista todos os seus trabalhos e provas.\n" +
		"• /addtrabalho - Adiciona um novo trabalho na sua agenda.\n" +
		"• /addprova - Adiciona uma nova prova na sua agenda.\n" +
		"• /gerenciaratividades - Edita ou exclui trabalhos e provas.\n\n" +
		"✖️ *Faltas e 🎓 Notas*\n" +
		"• /faltei - Registra uma ou mais faltas.\n" +
		"• /gerenciarfaltas - Edita ou exclui registros de faltas.\n" +
		"• /faltas - Mostra o total de faltas por matéria.\n" +
		"• /addnota - Lança uma nova nota.\n" +
		"• /gerenciarnotas - Edita ou exclui notas.\n\n" +
		"⚡ *Resumos Rápidos*\n" +
		"• /hoje - Mostra um resumo das aulas e atividades do dia.\n" +
		"• /semana - Lista as atividades dos próximos 7 dias.\n\n" +
		"⚙️ *Comandos Gerais*\n" +
		"• /start - Mostra o menu principal.\n" +
		"• /help - Mostra esta mensagem de ajuda.\n" +
		"• /lembrar - Cria um lembrete personalizado.\n" +
		"• /bug - Reporta um problema para o desenvolvedor.\n" +
		"• /import - (Avançado) Cadastra matérias em massa a partir de JSON.\n" +
		"• /deletardados - Apaga todos os seus dados do bot.\n" +
		"• /cancelar - *(Importante!)* Interrompe qualquer operação."
)

// WelcomeNew greets a first-time user.
func WelcomeNew(firstName string) string {
	return fmt.Sprintf("Olá, %s! Bem-vindo(a) ao Jovis. 🤖\n\n"+
		"Irei te auxiliar na organização dos seus estudos.\n\n"+
		"Se encontrar algum comportamento estranho, me avise pelo comando /bug.\n\n"+
		"Envie /help para conhecer minhas funcionalidades.", firstName)
}

// WelcomeBack greets a returning user.
func WelcomeBack(firstName string) string {
	return fmt.Sprintf("Olá de volta, %s! 👋\n\nO que temos pra hoje?", firstName)
}

// Validation errors.
const (
	ErrorInvalidTime           = "Formato de hora inválido. 😓 Tente novamente: *HH:MM*."
	ErrorInvalidDate           = "Formato de data inválido. 😓 Tente novamente: *DD/MM/AAAA*."
	ErrorInvalidSemester       = "Por favor, envie apenas o número do semestre."
	ErrorInvalidNumberPositive = "Por favor, envie um número inteiro e positivo."
	ErrorInvalidGrade          = "Valor inválido. 😓 Por favor, envie um número (ex: 7.5 ou 10)."
	ErrorInvalidWeekday        = "Dia inválido. Por favor, escolha um dia da semana (ex: Segunda)."
	ErrorInvalidChoice         = "Opção inválida. Por favor, escolha um dos itens da lista."
	ErrorEmptyField            = "Este campo não pode ficar vazio. Por favor, tente novamente."
	ErrorNotFound              = "Erro: O item que você tentou acessar não foi encontrado. Pode já ter sido excluído."
)

// Subjects.
const (
	SubjectCreateAskName      = "Ok, vamos cadastrar uma nova matéria.\nPrimeiro, qual é o nome da matéria? (Ex: Cálculo I)\n\nEnvie /cancelar para interromper."
	SubjectCreateAskDay       = "Anotado. Agora escolha o dia da semana da aula:"
	SubjectCreateAskRoom      = "Dia definido. Qual a sala ou laboratório?"
	SubjectCreateAskStartTime = "Sala anotada. Qual o horário de *início* da aula? (formato HH:MM, ex: 19:00)"
	SubjectCreateAskEndTime   = "Horário de início salvo. E qual o horário de *término*? (formato HH:MM, ex: 22:30)"
	SubjectCreateAskSemester  = "Horários salvos. Em qual semestre você está cursando esta matéria? (ex: 1, 2, 3...)"

	SubjectListNoSubjects   = "Você ainda não cadastrou nenhuma matéria. Use /addmateria para começar."
	SubjectManagePrompt     = "Escolha uma matéria para gerenciar:"
	SubjectManageNoSubjects = "Você não tem matérias para gerenciar. Use /addmateria para adicionar uma."
	SubjectEditAskDay       = "Por favor, escolha o novo dia da semana:"
	SubjectEditChooseField  = "Selecione o campo que deseja alterar:"
	SubjectEditSuccess      = "✅ Campo atualizado com sucesso!"

	ReportPrompt     = "Escolha uma matéria para ver o relatório detalhado:"
	ReportNoSubjects = "Você não tem matérias cadastradas para gerar um relatório."
)

func SubjectCreateAskProfessor(name string) string {
	return fmt.Sprintf("Nome da matéria: '*%s*'.\nAgora, qual o nome do(a) professor(a)?", name)
}

func SubjectCreateSuccess(name string) string {
	return fmt.Sprintf("✅ Matéria '*%s*' cadastrada com sucesso!", name)
}

func SubjectManageActionPrompt(name string) string {
	return fmt.Sprintf("Gerenciando a matéria: *%s*\nO que você deseja fazer?", name)
}

func SubjectEditAskNewValue(fieldName string) string {
	return fmt.Sprintf("Por favor, envie o novo valor para *%s*:", fieldName)
}

func SubjectDeleteConfirm(name string) string {
	return fmt.Sprintf("⚠️ *ATENÇÃO:*\nTem certeza que deseja excluir a matéria *%s*? Esta ação não pode ser desfeita e apagará todas as atividades, faltas e notas associadas.", name)
}

func SubjectDeleteSuccess(name string) string {
	return fmt.Sprintf("Matéria *%s* foi excluída com sucesso.", name)
}

// Activities.
const (
	ActivityCreateNoSubjects = "Você precisa ter pelo menos uma matéria cadastrada para adicionar uma atividade. Use /addmateria primeiro."
	ActivityCreateAskSubject = "Ok. Agora, a qual matéria este item pertence?"
	ActivityCreateAskNotes   = "Data anotada! Você quer adicionar alguma observação? Se não, pode enviar 'não' ou 'pular'."
	ActivityListNoActivities = "Você não tem nenhuma atividade na sua agenda. Use /addtrabalho ou /addprova para começar."

	ActivityManagePrompt        = "Escolha uma atividade para gerenciar:"
	ActivityManageActionPrompt  = "O que deseja fazer com esta atividade?"
	ActivityEditAskName         = "Qual o novo nome para esta atividade?"
	ActivityEditAskDate         = "Qual a nova data? Por favor, envie no formato *DD/MM/AAAA*."
	ActivityManageDeleteConfirm = "Tem certeza que deseja excluir esta atividade?"
	ActivityManageDeleteSuccess = "Atividade excluída com sucesso."
	ActivityManageUpdateSuccess = "✅ Atividade atualizada com sucesso!"
)

func ActivityCreatePrompt(activityType string) string {
	return fmt.Sprintf("Vamos adicionar um(a) novo(a) *%s*.\nQual o nome? (Ex: Entrega da API, Prova P2)\n\nEnvie /cancelar para interromper.", activityType)
}

func ActivityCreateAskDate(subjectName string) string {
	return fmt.Sprintf("Matéria '*%s*' selecionada.\n\nQual a data de entrega? Por favor, envie no formato *DD/MM/AAAA*.", subjectName)
}

func ActivityCreateSuccess(activityType, activityName string) string {
	return fmt.Sprintf("✅ *%s* '%s' adicionado(a) com sucesso!", activityType, activityName)
}

// Absences.
const (
	AbsenceCreateNoSubjects  = "Você precisa ter matérias cadastradas para registrar uma falta. Use /addmateria."
	AbsenceCreateAskSubject  = "Para qual matéria você deseja registrar a falta?\n\nEnvie /cancelar para interromper."
	AbsenceCreateAskDate     = "Quando foi a falta? Envie a data no formato *DD/MM/AAAA* ou 'hoje'."
	AbsenceCreateAskQuantity = "Entendido. Quantas aulas/faltas você perdeu nesse dia? (normalmente 1 ou 2)"
	AbsenceCreateAskNotes    = "Deseja adicionar uma observação? (ex: 'atestado médico'). Se não, envie 'não' ou 'pular'."

	AbsenceManagePrompt         = "Escolha uma matéria para ver o histórico de faltas:"
	AbsenceManageNoSubjects     = "Você não tem matérias para gerenciar faltas."
	AbsenceManageActionPrompt   = "O que deseja fazer com este registro de falta?"
	AbsenceManageAskNewQuantity = "Qual a nova quantidade para este registro de falta?"
	AbsenceManageDeleteConfirm  = "Tem certeza que deseja excluir este registro?"
	AbsenceManageDeleteSuccess  = "Registro de falta excluído com sucesso."
	AbsenceManageUpdateSuccess  = "Quantidade de faltas atualizada com sucesso!"

	AbsenceReportNoSubjects = "Você não tem matérias cadastradas para ver um relatório de faltas."
)

func AbsenceCreateSuccess(quantity int, subjectName string, total int) string {
	return fmt.Sprintf("✅ %d falta(s) registrada(s) para *%s*.\nTotal atual: *%d* faltas.", quantity, subjectName, total)
}

func AbsenceManageNoRecords(subjectName string) string {
	return fmt.Sprintf("Nenhum registro de falta encontrado para *%s*.", subjectName)
}

func AbsenceManageHeader(subjectName string, total int) string {
	return fmt.Sprintf("Histórico de faltas para *%s* (Total: %d):", subjectName, total)
}

// Grades.
const (
	GradeCreateNoSubjects = "Você precisa ter matérias cadastradas para lançar uma nota. Use /addmateria."
	GradeCreateAskSubject = "Para qual matéria você quer lançar uma nota?\n\nEnvie /cancelar para interromper."
	GradeCreateAskName    = "Matéria selecionada. Qual o nome desta avaliação? (Ex: P1, Trabalho 1)"
	GradeCreateAskValue   = "Nome da avaliação definido. Agora, qual foi a nota que você tirou?\n\n(Use *ponto* para decimais, ex: 8.5)"

	GradeManageNoSubjects    = "Você não tem matérias para gerenciar notas."
	GradeManageAskSubject    = "Escolha uma matéria para ver as notas lançadas:"
	GradeManageActionPrompt  = "O que deseja fazer com esta nota?"
	GradeManageDeleteConfirm = "Tem certeza que deseja excluir esta nota? Esta ação não pode ser desfeita."
	GradeEditAskName         = "Qual o novo nome para esta avaliação? (Ex: P1, Trabalho Final)"
	GradeEditAskValue        = "Nome atualizado. Agora, qual o novo valor da nota? (Ex: 8.5)"
	GradeEditSuccess         = "✅ Nota atualizada com sucesso!"
	GradeDeleteSuccess       = "Nota excluída com sucesso."
)

func GradeCreateSuccess(value, name, subjectName string) string {
	return fmt.Sprintf("✅ Nota *%s* para '%s' lançada com sucesso na matéria *%s*!", value, name, subjectName)
}

func GradeManageNoGrades(subjectName string) string {
	return fmt.Sprintf("Nenhuma nota lançada para *%s*.", subjectName)
}

func GradeManageListHeader(subjectName string) string {
	return fmt.Sprintf("Notas lançadas para *%s*:", subjectName)
}

// Bulk import.
const (
	ImportStartPrompt = "Olá! Esta é a função de importação em massa de matérias.\n\n" +
		"Por favor, envie uma mensagem contendo a lista das suas matérias em JSON.\n\n" +
		"*O formato deve ser exatamente este:*\n" +
		"```[{\"nome\": \"Cálculo I\", \"professor\": \"Dr. Silva\", \"dia\": \"quarta\", \"sala\": \"B12\", \"inicio\": \"19:00\", \"fim\": \"22:30\", \"semestre\": 3}]```\n\n" +
		"Envie o JSON agora ou use /cancelar para sair."
	ImportJSONNotAList = "O JSON deve ser uma lista de matérias."
)

func ImportJSONError(err error) string {
	return fmt.Sprintf("Erro ao ler o conteúdo: %v\nPor favor, verifique o formato e envie novamente.", err)
}

func ImportSuccess(count int) string {
	return fmt.Sprintf("✅ *Importação concluída!*\n\n%d matéria(s) cadastrada(s) com sucesso.", count)
}

func ImportFailure(errorList string) string {
	return "❌ *Ocorreram erros e nenhuma matéria foi importada.*\n\n" +
		"Por favor, corrija os seguintes problemas e envie novamente:\n" + errorList
}

// Onboarding (/fatec).
const (
	OnboardingStart           = "Olá, futuro(a) FATECano(a)! Vamos configurar sua grade horária.\n\nPrimeiro, escolha seu curso:"
	OnboardingAskShift        = "Ótima escolha! Agora, qual o seu turno?"
	OnboardingAskGradeType    = "Entendido. Como você prefere montar sua grade?\n\nA grade personalizada é ideal para quem tem DPs ou adiantou matérias."
	OnboardingAskIdealSem     = "Perfeito! Agora, por favor, selecione o seu semestre:"
	OnboardingNoCatalog       = "Desculpe, não encontrei o catálogo de matérias para seu curso/turno."
	OnboardingCustomPrompt    = "Por favor, envie uma mensagem com os *IDs* das matérias que você irá cursar, separados por vírgula ou espaço (ex: 1, 5, 12, 18)."
	OnboardingInvalidIDs      = "Formato de IDs inválido. Por favor, envie apenas os números separados por espaço ou vírgula."
	OnboardingNoConflictAskSem = "Ótima escolha! Nenhum conflito de horário encontrado.\n\nPara finalizar, em qual semestre você está? (Isto é opcional, envie 'pular' se não quiser informar)"
	OnboardingCustomListHeader = "Certo! Abaixo está a lista de TODAS as matérias disponíveis para o seu curso.\n"
)

func OnboardingNoIdealGrade(semester int) string {
	return fmt.Sprintf("Desculpe, não encontrei a grade ideal para o %dº semestre do seu curso/turno.", semester)
}

func OnboardingIdealSuccess(count, semester int) string {
	return fmt.Sprintf("✅ Sucesso! Sua grade com %d matérias para o %dº semestre foi cadastrada. Use o comando /grade para visualizar.", count, semester)
}

func OnboardingConflictError(detail string) string {
	return fmt.Sprintf("%s\n\nPor favor, escolha uma nova combinação de IDs.", detail)
}

func OnboardingCustomSuccess(count int) string {
	return fmt.Sprintf("✅ Tudo pronto! Sua grade personalizada com %d matérias foi cadastrada com sucesso. Use /grade para ver o resultado.", count)
}

// Account deletion.
const (
	DeleteDataPhrase  = "excluir todos os meus dados"
	DeleteDataWarning = "⚠️ *ATENÇÃO: AÇÃO IRREVERSÍVEL* ⚠️\n\n" +
		"Você está prestes a apagar *TODOS* os seus dados do Jovis. " +
		"Isso inclui sua grade horária, todas as atividades, faltas e notas cadastradas.\n\n" +
		"Esta ação não pode ser desfeita.\n\n" +
		"Para confirmar que você entende e deseja prosseguir, por favor, digite a frase exata abaixo:\n" +
		"```excluir todos os meus dados```"
	DeleteDataConfirmationInvalid = "A confirmação está incorreta. A operação foi cancelada para sua segurança."
	DeleteDataSuccess             = "Todos os seus dados foram permanentemente removidos. Obrigado por usar o Jovis. Adeus! 👋"
)

// Admin broadcast.
const (
	AdminOnly           = "Este comando está disponível apenas para administradores."
	BroadcastStart      = "*Modo Administrador: Transmissão*\n\nPor favor, envie a mensagem que você deseja transmitir para *TODOS* os usuários do bot.\n\nUse /cancelar para sair."
	BroadcastSending    = "Iniciando a transmissão... A mensagem está sendo enviada em segundo plano. Você receberá um relatório ao final."
	BroadcastCanceled   = "Transmissão cancelada."
)

func BroadcastConfirm(message string, userCount int) string {
	return fmt.Sprintf("*Revisão da Mensagem de Transmissão:*\n\n— — — Mensagem Abaixo — — —\n%s\n— — — Fim da Mensagem — — —\n\n"+
		"Você tem certeza que deseja enviar esta mensagem para *%d* usuário(s)?\nEsta ação não pode ser desfeita.", message, userCount)
}

func BroadcastReport(successCount, failureCount int) string {
	return fmt.Sprintf("✅ *Relatório de Transmissão Concluído* ✅\n\n• *Sucessos:* %d\n• *Falhas:* %d", successCount, failureCount)
}

// Reminders.
const (
	ReminderCustomAskMessage = "Ok, vamos criar um lembrete. Primeiro, me diga: *o que* você quer que eu te lembre?"
	ReminderCustomAskTime    = "Entendido. Agora, *quando* você quer ser lembrado? (Ex: em 1 hora, amanhã às 10:30, 25/12/2025 18:00)"
	ReminderCustomErrorTime  = "Desculpe, não consegui entender essa data/hora. Tente formatos como 'em 30 minutos', 'amanhã às 14:00' ou '25/12/2025 18:00'."
	ReminderAutomaticHeader  = "Ei! Tenho alguns lembretes importantes para você:\n\n"
)

func ReminderCustomSuccess(message, when string) string {
	return fmt.Sprintf("✅ Certo! Agendei um lembrete para '*%s*' em %s.", message, when)
}

func ReminderCustomNotification(message string) string {
	return fmt.Sprintf("🔔 *Lembrete:* %s", message)
}

func ReminderDueTomorrow(activityType, activityName, subjectName string) string {
	return fmt.Sprintf("🔔 *Atenção, vence AMANHÃ:* %s '*%s*' (Matéria: %s)", activityType, activityName, subjectName)
}

func ReminderDueInThreeDays(activityType, activityName, subjectName string) string {
	return fmt.Sprintf("🔔 *Lembrete para daqui a 3 dias:* %s '*%s*' (Matéria: %s)", activityType, activityName, subjectName)
}

// Bug reports.
const (
	BugReportAsk     = "Sinto muito pelo problema! 😓\nPor favor, descreva o que aconteceu com o máximo de detalhes possível."
	BugReportThanks  = "Obrigado pelo seu relato! O problema foi encaminhado para o desenvolvedor. 🙏"
	BugReportFailure = "Não consegui encaminhar seu relato agora. Por favor, tente novamente mais tarde."
)
